package webpencoder

import (
	"sync"

	"github.com/davidbyttow/govips/v2/vips"

	"github.com/user/gifcap/pkg/ports"
)

var (
	vipsMu          sync.Mutex
	vipsInitialized bool
)

// leveled is implemented by loggers that expose their threshold.
type leveled interface {
	Level() ports.LogLevel
}

// Startup initializes libvips once and routes its log output into logger.
// It should be called before the first Encode; Encode calls it lazily
// otherwise.
func Startup(logger ports.Logger) {
	vipsMu.Lock()
	defer vipsMu.Unlock()

	if vipsInitialized {
		return
	}
	log := logger.WithComponent("vips")

	level := ports.LevelInfo
	if l, ok := logger.(leveled); ok {
		level = l.Level()
	}

	var vipsLevel vips.LogLevel
	switch level {
	case ports.LevelDebug:
		vipsLevel = vips.LogLevelInfo
	case ports.LevelInfo:
		vipsLevel = vips.LogLevelWarning
	case ports.LevelWarn:
		vipsLevel = vips.LogLevelError
	default:
		vipsLevel = vips.LogLevelCritical
	}

	vips.LoggingSettings(func(domain string, lvl vips.LogLevel, msg string) {
		switch lvl {
		case vips.LogLevelError, vips.LogLevelCritical:
			log.Error("[%s] %s", domain, msg)
		case vips.LogLevelWarning:
			log.Warn("[%s] %s", domain, msg)
		default:
			log.Debug("[%s] %s", domain, msg)
		}
	}, vipsLevel)

	vips.Startup(&vips.Config{
		ConcurrencyLevel: 1,
		MaxCacheMem:      50 * 1024 * 1024,
		MaxCacheSize:     100,
	})
	vipsInitialized = true
	log.Debug("libvips %s initialized", vips.Version)
}

// Shutdown releases libvips. It is safe to call without Startup.
func Shutdown() {
	vipsMu.Lock()
	defer vipsMu.Unlock()

	if vipsInitialized {
		vips.Shutdown()
		vipsInitialized = false
	}
}

// Available reports whether libvips can write WebP. It starts libvips when
// needed.
func Available(logger ports.Logger) bool {
	Startup(logger)
	return vips.IsTypeSupported(vips.ImageTypeWEBP)
}
