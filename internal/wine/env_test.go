package wine

import (
	"testing"

	"github.com/winevat/winevat/internal/config"
)

func TestWineEnvOverlaysRequiredKeys(t *testing.T) {
	cfg := config.Config{Prefix: "/prefixes/default", WineDebug: "fixme-all"}

	env := WineEnv(cfg, map[string]string{
		"LANG":       "en_US.UTF-8",
		"WINEPREFIX": "/caller/tried/to/override",
		"WINEDEBUG":  "+all",
	})

	if env["WINEPREFIX"] != "/prefixes/default" {
		t.Errorf("WINEPREFIX = %q, caller override must lose", env["WINEPREFIX"])
	}
	if env["WINEDEBUG"] != "fixme-all" {
		t.Errorf("WINEDEBUG = %q, caller override must lose", env["WINEDEBUG"])
	}
	if env["LANG"] != "en_US.UTF-8" {
		t.Errorf("caller keys must pass through, LANG = %q", env["LANG"])
	}
}

func TestWineEnvNilBase(t *testing.T) {
	cfg := config.Config{Prefix: "/p", WineDebug: "d"}
	env := WineEnv(cfg, nil)
	if len(env) != 2 {
		t.Errorf("expected exactly the required keys, got %v", env)
	}
}

func TestWineserverEnvSkipsDebug(t *testing.T) {
	cfg := config.Config{Prefix: "/p", WineDebug: "fixme-all"}
	env := WineserverEnv(cfg, nil)

	if env["WINEPREFIX"] != "/p" {
		t.Errorf("WINEPREFIX = %q", env["WINEPREFIX"])
	}
	if _, exists := env["WINEDEBUG"]; exists {
		t.Error("wineserver environment must not carry WINEDEBUG")
	}
}
