package wine

import "github.com/winevat/winevat/internal/config"

// WineEnv builds the environment overlay for the wine binary. It starts
// from the caller-supplied base mapping and overlays the keys the tool
// requires; required keys win on conflict.
func WineEnv(cfg config.Config, base map[string]string) map[string]string {
	env := make(map[string]string, len(base)+2)
	for k, v := range base {
		env[k] = v
	}
	env["WINEPREFIX"] = cfg.Prefix
	env["WINEDEBUG"] = cfg.WineDebug
	return env
}

// WineserverEnv builds the environment overlay for the wineserver binary.
// Unlike WineEnv it does not set WINEDEBUG; wineserver only needs to locate
// the prefix.
func WineserverEnv(cfg config.Config, base map[string]string) map[string]string {
	env := make(map[string]string, len(base)+1)
	for k, v := range base {
		env[k] = v
	}
	env["WINEPREFIX"] = cfg.Prefix
	return env
}
