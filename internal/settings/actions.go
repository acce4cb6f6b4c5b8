package settings

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dtnitsch/chapterclip/internal/common"
	"github.com/dtnitsch/chapterclip/models"
	settingspkg "github.com/dtnitsch/chapterclip/pkg/settings"
	"github.com/urfave/cli/v2"
)

func ShowAction(c *cli.Context) error {
	env, err := common.Setup(c)
	if err != nil {
		return err
	}
	defer env.Close()

	return Show(os.Stdout, env.Settings, c.String("output-format"))
}

// Show prints the current settings and where they live.
func Show(w io.Writer, store *settingspkg.Store, format string) error {
	if format == "" || format == "yaml" {
		fmt.Fprintf(w, "# %s\n", store.Path())
	}
	return common.WriteOutput(w, store.Get(), format)
}

// SetAction applies key=value pairs in order. All pairs are checked first so
// a bad pair changes nothing.
func SetAction(c *cli.Context) error {
	env, err := common.Setup(c)
	if err != nil {
		return err
	}
	defer env.Close()

	if c.NArg() == 0 {
		return fmt.Errorf("usage: settings set key=value [key=value...]; keys: %s",
			strings.Join(settingspkg.Keys(), ", "))
	}
	updated, err := Set(env.Settings, c.Args().Slice())
	if err != nil {
		return err
	}
	env.Logger.Info("settings updated", "path", env.Settings.Path(), "pairs", c.NArg())
	return common.WriteOutput(os.Stdout, updated, c.String("output-format"))
}

// Set parses and applies key=value pairs atomically.
func Set(store *settingspkg.Store, pairs []string) (models.Settings, error) {
	type kv struct{ key, value string }
	parsed := make([]kv, 0, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || strings.TrimSpace(key) == "" {
			return store.Get(), fmt.Errorf("invalid setting %q: want key=value", pair)
		}
		parsed = append(parsed, kv{strings.TrimSpace(key), strings.TrimSpace(value)})
	}

	return store.Update(func(cfg *models.Settings) error {
		for _, p := range parsed {
			if err := settingspkg.SetKey(cfg, p.key, p.value); err != nil {
				return err
			}
		}
		return nil
	})
}

func ResetAction(c *cli.Context) error {
	env, err := common.Setup(c)
	if err != nil {
		return err
	}
	defer env.Close()

	if _, err := env.Settings.Reset(); err != nil {
		return fmt.Errorf("failed to reset settings: %w", err)
	}
	fmt.Printf("Settings in %s reset to defaults\n", env.Settings.Path())
	return nil
}
