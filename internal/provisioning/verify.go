package provisioning

import (
	"context"
	"time"

	"github.com/dropDatabas3/taskhub/internal/domain/repository"
	"github.com/dropDatabas3/taskhub/internal/domain/types"
	"github.com/dropDatabas3/taskhub/internal/observability/logger"
)

type VerifyInput struct {
	Email    string
	Password string
	// Provider default EMAIL.
	Provider string
}

// Verify valida credenciales locales. Cuenta inexistente y password
// incorrecto devuelven el mismo mensaje al cliente.
func (s *service) Verify(ctx context.Context, in VerifyInput) (*repository.User, error) {
	start := time.Now()
	email := normalizeEmail(in.Email)
	provider := types.ParseProvider(in.Provider).String()

	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("provisioning"),
		logger.Op("Verify"),
		logger.Provider(provider),
		logger.Email(email),
	)

	fail := func(err error) (*repository.User, error) {
		s.deps.Observer.ObserveFlow(FlowVerify, outcomeOf(err), time.Since(start))
		return nil, err
	}

	acc, err := s.deps.Store.Accounts().GetByProvider(ctx, provider, email)
	if err != nil {
		if repository.IsNotFound(err) {
			log.Info("account not found")
			return fail(ErrInvalidCredentials)
		}
		log.Error("account lookup failed", logger.Err(err))
		return fail(err)
	}

	user, err := s.deps.Store.Users().GetByID(ctx, acc.UserID)
	if err != nil {
		if repository.IsNotFound(err) {
			log.Error("account references a missing user", logger.AccountID(acc.ID), logger.UserID(acc.UserID))
			return fail(ErrAccountUserMissing)
		}
		log.Error("user lookup failed", logger.Err(err))
		return fail(err)
	}

	if !user.CheckPassword(in.Password) {
		log.Info("password mismatch", logger.UserID(user.ID))
		return fail(ErrPasswordMismatch)
	}

	// Hashes heredados (bcrypt o argon2id con otros parámetros) se migran
	// en el primer login correcto. Un fallo no bloquea el login.
	if upgraded, err := s.deps.Store.Users().UpgradePassword(ctx, user.ID, in.Password, *user.PasswordHash); err != nil {
		log.Warn("password rehash failed", logger.UserID(user.ID), logger.Err(err))
	} else if upgraded {
		log.Info("password rehashed", logger.UserID(user.ID))
	}

	s.deps.Observer.ObserveFlow(FlowVerify, OutcomeOK, time.Since(start))
	return user.WithoutPassword(), nil
}
