package main

// General API documentation for swaggo, describing the routes of `crystal serve`.
//
// @title           crystal API
// @version         1.0
// @description     Liveness, readiness and status of a bootstrapped application.
//
// @license.name   MIT
// @license.url    https://opensource.org/licenses/MIT
//
// @BasePath  /
//
// @schemes http
