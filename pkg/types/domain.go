package types

// Paths is the set of directories derived from the application root.
type Paths struct {
	// Application root.
	// example: /srv/app
	Root string `json:"root" example:"/srv/app"`
	// Source directory.
	// example: /srv/app/src
	Src string `json:"src" example:"/srv/app/src"`
	// Configuration documents.
	// example: /srv/app/src/config
	Config string `json:"config" example:"/srv/app/src/config"`
	// Init hooks.
	// example: /srv/app/src/init
	Init string `json:"init" example:"/srv/app/src/init"`
	// Project-local resource drivers.
	// example: /srv/app/src/db
	DB string `json:"db" example:"/srv/app/src/db"`
}

// Resource describes one provisioned resource.
type Resource struct {
	// Resource-type name as declared in configuration.
	// example: redis
	Name string `json:"name" example:"redis"`
	// Go type of the connected handle.
	// example: *redis.Client
	Handle string `json:"handle" example:"*redis.Client"`
}
