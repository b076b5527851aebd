package provisioning

import (
	"context"
	"errors"
	"fmt"

	"github.com/dropDatabas3/taskhub/internal/domain/repository"
	"github.com/dropDatabas3/taskhub/internal/domain/types"
	"github.com/dropDatabas3/taskhub/internal/observability/logger"
)

// RoleResolver resuelve el rol Owner. Nunca lo crea: la siembra es
// responsabilidad de SeedRoles.
type RoleResolver interface {
	Owner(ctx context.Context, roles repository.RoleRepository) (*repository.Role, error)
}

// OwnerByName busca el rol por nombre ("Owner").
type OwnerByName struct{}

func (OwnerByName) Owner(ctx context.Context, roles repository.RoleRepository) (*repository.Role, error) {
	role, err := roles.GetByName(ctx, types.RoleOwner)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrOwnerRoleNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("resolve owner role: %w", err)
	}
	return role, nil
}

// CheckPreconditions verifica que los roles de sistema estén sembrados.
// cmd/taskhub lo llama al arrancar y aborta si falla.
func CheckPreconditions(ctx context.Context, roles repository.RoleRepository) error {
	if _, err := (OwnerByName{}).Owner(ctx, roles); err != nil {
		if errors.Is(err, ErrOwnerRoleNotFound) {
			return fmt.Errorf("%w: run `taskhubctl seed roles`", err)
		}
		return err
	}
	return nil
}

// SeedReport resume el resultado de SeedRoles por rol.
type SeedReport map[string]repository.UpsertOutcome

// SeedRoles crea o actualiza los roles de sistema. Es idempotente.
func SeedRoles(ctx context.Context, roles repository.RoleRepository) (SeedReport, error) {
	log := logger.From(ctx).With(logger.Layer("service"), logger.Component("provisioning.roles"), logger.Op("SeedRoles"))

	report := make(SeedReport, len(types.SystemRoleNames))
	for _, name := range types.SystemRoleNames {
		role, outcome, err := roles.Upsert(ctx, name, types.SystemRoles[name])
		if err != nil {
			log.Error("role seeding failed", logger.String("role", name), logger.Err(err))
			return report, fmt.Errorf("seed role %s: %w", name, err)
		}
		report[name] = outcome
		log.Info("role seeded",
			logger.String("role", name),
			logger.RoleID(role.ID),
			logger.String("outcome", string(outcome)),
		)
	}
	log.Info("system roles seeded", logger.Count(len(report)))
	return report, nil
}
