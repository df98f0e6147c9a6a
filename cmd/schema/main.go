// Command schema writes the JSON schema of the newsmith config, or checks that a written one is current
package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/go-pkgz/lgr"
	"github.com/jessevdk/go-flags"

	"github.com/umputun/newsmith/pkg/config"
)

type opts struct {
	Out   string `short:"o" long:"out" default:"schema.json" description:"schema file"`
	Check bool   `long:"check" description:"fail if the schema file differs from the generated one"`
}

// errStale is returned in check mode when the schema file is outdated
var errStale = errors.New("schema file is stale, regenerate it")

func main() {
	var o opts
	if _, err := flags.Parse(&o); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	if err := run(o); err != nil {
		lgr.Printf("[ERROR] %v", err)
		os.Exit(1)
	}
}

func run(o opts) error {
	data, err := json.MarshalIndent(config.GenerateSchema(), "", "  ")
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}
	data = append(data, '\n')

	if o.Check {
		current, err := os.ReadFile(o.Out)
		if err != nil {
			return fmt.Errorf("read %s: %w", o.Out, err)
		}
		if !bytes.Equal(current, data) {
			return fmt.Errorf("%w: %s", errStale, o.Out)
		}
		lgr.Printf("[INFO] %s is up to date", o.Out)
		return nil
	}

	if err := os.WriteFile(o.Out, data, 0o600); err != nil {
		return fmt.Errorf("write %s: %w", o.Out, err)
	}
	lgr.Printf("[INFO] schema written to %s", o.Out)
	return nil
}
