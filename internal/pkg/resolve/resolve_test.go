package resolve

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ozacod/cforge/internal/pkg/platform"
	"github.com/ozacod/cforge/pkg/manifest"
)

func TestOverlayMergePrecedence(t *testing.T) {
	// Spec §8 scenario S2: base defines=[A], platform.linux defines=[B],
	// build.config.debug defines=[C] on linux/debug yields A,B,C in order.
	p := &manifest.Project{
		Base: manifest.Overlay{Defines: []string{"A"}},
		Platforms: map[string]manifest.Overlay{
			"linux": {Defines: []string{"B"}},
		},
		Configs: map[string]manifest.Overlay{
			"debug": {Defines: []string{"C"}},
		},
		ConfigsDeprecated: map[string]manifest.Overlay{},
		Compilers:         map[string]manifest.Overlay{},
		PlatformCompilers: map[string]manifest.Overlay{},
	}

	cfg := Resolve(p, platform.Linux, platform.GCC, "debug")
	assert.Equal(t, []string{"A", "B", "C"}, cfg.Defines)
}

func TestDuplicateListEntriesDeduplicated(t *testing.T) {
	p := &manifest.Project{
		Base: manifest.Overlay{Defines: []string{"A", "B"}},
		Platforms: map[string]manifest.Overlay{
			"linux": {Defines: []string{"B", "C"}},
		},
		Compilers:         map[string]manifest.Overlay{},
		PlatformCompilers: map[string]manifest.Overlay{},
		Configs:           map[string]manifest.Overlay{},
		ConfigsDeprecated: map[string]manifest.Overlay{},
	}

	cfg := Resolve(p, platform.Linux, platform.GCC, "")
	assert.Equal(t, []string{"A", "B", "C"}, cfg.Defines)
}

func TestScalarOverlayHighestPrecedenceWins(t *testing.T) {
	trueVal := true
	falseVal := false
	p := &manifest.Project{
		Base: manifest.Overlay{LTO: &falseVal},
		Compilers: map[string]manifest.Overlay{
			"gcc": {LTO: &trueVal},
		},
		Platforms:         map[string]manifest.Overlay{},
		PlatformCompilers: map[string]manifest.Overlay{},
		Configs:           map[string]manifest.Overlay{},
		ConfigsDeprecated: map[string]manifest.Overlay{},
	}

	cfg := Resolve(p, platform.Linux, platform.GCC, "")
	assert.Contains(t, cfg.Portable.Link, "-flto")
}

func TestMacFrameworksIgnoredOnNonMacPlatform(t *testing.T) {
	p := &manifest.Project{
		Base:              manifest.Overlay{Frameworks: []string{"CoreFoundation"}},
		Platforms:         map[string]manifest.Overlay{},
		Compilers:         map[string]manifest.Overlay{},
		PlatformCompilers: map[string]manifest.Overlay{},
		Configs:           map[string]manifest.Overlay{},
		ConfigsDeprecated: map[string]manifest.Overlay{},
	}

	cfg := Resolve(p, platform.Linux, platform.GCC, "")
	assert.Empty(t, cfg.Frameworks)

	macCfg := Resolve(p, platform.MacOS, platform.AppleClang, "")
	assert.Equal(t, []string{"CoreFoundation"}, macCfg.Frameworks)
}

func TestEmptyOverlayIsIdentity(t *testing.T) {
	p := &manifest.Project{
		Base:              manifest.Overlay{Defines: []string{"A"}},
		Platforms:         map[string]manifest.Overlay{"windows": {}},
		Compilers:         map[string]manifest.Overlay{},
		PlatformCompilers: map[string]manifest.Overlay{},
		Configs:           map[string]manifest.Overlay{},
		ConfigsDeprecated: map[string]manifest.Overlay{},
	}

	cfg := Resolve(p, platform.Windows, platform.MSVC, "")
	assert.Equal(t, []string{"A"}, cfg.Defines)
}
