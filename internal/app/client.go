package app

import (
	"context"

	"github.com/adanyl0v/studyboard/internal/client"
	"github.com/adanyl0v/studyboard/internal/config"
	"github.com/adanyl0v/studyboard/internal/events"
	"github.com/adanyl0v/studyboard/internal/localstate"
	"github.com/adanyl0v/studyboard/internal/state"
)

// ClientApp bundles what the terminal commands work with.
type ClientApp struct {
	Config *config.ClientConfig
	API    *client.Client
	Local  *localstate.Store
	Bus    *events.Bus
	Store  *state.Store
}

// OpenClient reads the client config at cfgPath, opens the local state
// and wires the store to the API. A token saved by "login" is used
// when the config has none.
func OpenClient(ctx context.Context, cfgPath string) (*ClientApp, error) {
	cfg, err := ReadClientConfig(cfgPath)
	if err != nil {
		return nil, err
	}

	local, err := localstate.Open(Logger("localstate"), cfg.StatePath)
	if err != nil {
		globalLogger.Error().
			Err(err).
			Str("path", cfg.StatePath).
			Msg("failed to open local state")
		return nil, err
	}

	token := cfg.Token
	if token == "" {
		token = local.Token(ctx)
	}

	api := client.New(Logger("client"), client.Options{
		BaseURL: cfg.APIURL,
		Token:   token,
		Timeout: cfg.Timeout,
	})
	bus := events.NewBus()

	return &ClientApp{
		Config: cfg,
		API:    api,
		Local:  local,
		Bus:    bus,
		Store: state.New(Logger("state"), api, bus, state.Options{
			WorkspaceID: cfg.Workspace,
		}),
	}, nil
}

func (a *ClientApp) Close() {
	err := a.Local.Close()
	if err != nil {
		globalLogger.Warn().
			Err(err).
			Msg("failed to close local state")
	}
}
