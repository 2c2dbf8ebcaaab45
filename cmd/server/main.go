package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/google/uuid"

	"github.com/kanidm-go/accessd/internal/accesscontrol"
	"github.com/kanidm-go/accessd/internal/config"
	"github.com/kanidm-go/accessd/internal/directory"
	"github.com/kanidm-go/accessd/internal/pkg/logger"
)

// main boots the access control engine standalone: load configuration,
// build a transaction container, load a small demo policy set, and run one
// search through the guard layer end to end. The engine has no HTTP
// surface of its own (out of scope, §1) — it is a library consumed by a
// directory server's request path.
func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	log := logger.New(cfg.LogFormat, cfg.LogLevel)
	log.Info("accessd engine starting", slog.Bool("strict_mode", cfg.StrictMode), slog.Int("resolve_cache_size", cfg.ResolveCacheSize))

	tc := accesscontrol.NewTransactionContainer(cfg.ResolveCacheSize)

	groupUUID := uuid.New()
	userUUID := uuid.New()

	policyEntry := directory.NewEntry(uuid.New(), accesscontrol.ClassACProfile, accesscontrol.ClassACPSearch).
		With("name", "demo-self-read").
		With(accesscontrol.AttrACPReceiverGroup, groupUUID.String()).
		With(accesscontrol.AttrACPTargetScope, "Pres(class)").
		With(accesscontrol.AttrACPSearchAttr, "name", "displayname")

	policy, err := accesscontrol.ParseSearchPolicy(policyEntry)
	if err != nil {
		log.Error("demo policy failed to parse", slog.Any("error", err))
		os.Exit(1)
	}

	wt := tc.Write()
	wt.UpdateSearch([]*accesscontrol.SearchPolicy{policy})
	wt.Commit()

	ident := directory.NewUser(userUUID, directory.ScopeReadOnly, groupUUID)
	rtxn := tc.Read()

	target := directory.NewEntry(uuid.New(), "person").
		With("name", "alice").
		With("displayname", "Alice Example")

	ctx := context.Background()
	results, err := accesscontrol.SearchFilterEntries(ctx, ident, directory.Pres("class"), rtxn.Snapshot.Search, rtxn.Cache, []*directory.Entry{target}, accesscontrol.SearchHookOptions{OAuth2DynamicRead: cfg.OAuth2DynamicRead})
	if err != nil {
		log.Error("demo search failed", slog.Any("error", err))
		os.Exit(1)
	}

	log.Info("demo search completed", slog.Int("entries_visible", len(results)))
}
