// Command figmentator-worker is the subprocess a ProcessPool launches one
// copy of per worker slot. It hosts exactly one model, selected by
// suggestion type, behind go-plugin's net/rpc transport.
package main

import (
	"flag"
	"os"

	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-plugin"

	"github.com/storium/figmentator/internal/figmodel"
	"github.com/storium/figmentator/internal/pool"
	"github.com/storium/figmentator/internal/registry"

	_ "github.com/storium/figmentator/internal/stubmodel"
)

func main() {
	suggestionType := flag.String("suggestion-type", "", "the suggestion type this worker serves")
	flag.Parse()

	logger := hclog.New(&hclog.LoggerOptions{
		Name:       "figmentator-worker",
		Output:     os.Stderr,
		Level:      hclog.Info,
		JSONFormat: true,
	})

	if *suggestionType == "" {
		logger.Error("missing -suggestion-type")
		os.Exit(1)
	}

	model, err := registry.New(figmodel.SuggestionType(*suggestionType))
	if err != nil {
		logger.Error("failed to construct model", "error", err)
		os.Exit(1)
	}

	plugin.Serve(&plugin.ServeConfig{
		HandshakeConfig: pool.Handshake,
		Plugins: map[string]plugin.Plugin{
			"model": &pool.ModelPlugin{Impl: model},
		},
		Logger: logger,
	})
}
