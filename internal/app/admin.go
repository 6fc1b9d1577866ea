package app

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"haikuadmin/internal/config"
	"haikuadmin/internal/game"
	"haikuadmin/internal/storage"
	logx "haikuadmin/pkg/logx"
)

// CreateAdministrator registers an admin account directly in the configured
// store, applying the same validation as the registration form.
func CreateAdministrator(ctx context.Context, cfgPath, username, password string, log logx.Logger) (game.Admin, error) {
	cfg, err := config.NewConfigManager(cfgPath).Load()
	if err != nil {
		return game.Admin{}, err
	}
	sc, err := mapStorageConfig(cfg)
	if err != nil {
		return game.Admin{}, err
	}
	store, err := storage.Open(sc, log)
	if err != nil {
		return game.Admin{}, err
	}
	defer store.Close()

	errs, err := game.ValidateAdminRegistration(ctx, store, username, password, password)
	if err != nil {
		return game.Admin{}, err
	}
	if errs != nil {
		return game.Admin{}, fmt.Errorf("invalid administrator: %s", formatErrors(errs))
	}

	admin, err := game.NewAdmin(username, password)
	if err != nil {
		return game.Admin{}, err
	}
	if err := store.CreateAdmin(ctx, &admin); err != nil {
		return game.Admin{}, err
	}
	if err := store.AppendAudit(ctx, storage.AuditEntry{
		ActorID:   admin.ID,
		ActorName: admin.Username,
		Action:    "register",
		Target:    admin.Username,
		OK:        true,
		Meta:      `{"via":"cli"}`,
	}); err != nil {
		log.Warn("audit append failed", logx.Err(err))
	}
	return admin, nil
}

func formatErrors(errs game.FormErrors) string {
	fields := make([]string, 0, len(errs))
	for f := range errs {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f+": "+strings.Join(errs[f], " "))
	}
	return strings.Join(parts, "; ")
}
