package server

// Config holds configuration for the HTTP server.
type Config struct {
	// Port is the port where the server will listen.
	Port string `mapstructure:"port" default:"8080"`
	// ApiKey is the secret key required to access the API.
	ApiKey string `mapstructure:"api_key" default:""`
	// SurfaceWidth is the pixel width of the hosted in-memory surface.
	SurfaceWidth float64 `mapstructure:"surface_width" default:"1024"`
	// SurfaceHeight is the pixel height of the hosted in-memory surface.
	SurfaceHeight float64 `mapstructure:"surface_height" default:"768"`
}

// SurfaceSizeValid checks that the configured surface dimensions are usable.
func (c Config) SurfaceSizeValid() bool {
	return c.SurfaceWidth > 0 && c.SurfaceHeight > 0
}
