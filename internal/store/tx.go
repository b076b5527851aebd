package store

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/dropDatabas3/taskhub/internal/domain/repository"
	"github.com/dropDatabas3/taskhub/internal/observability/logger"
)

// TxBeginner es la parte de AdapterConnection que necesita WithinTx.
type TxBeginner interface {
	BeginTx(ctx context.Context) (Tx, error)
}

// WithinTx ejecuta fn dentro de una transacción.
//
// Confirma solo si fn retorna nil. Ante error o panic hace rollback y el
// error de fn se devuelve sin envolver. Commit y rollback usan un contexto
// sin cancelación: una transacción iniciada siempre termina en commit o abort.
func WithinTx(ctx context.Context, conn TxBeginner, fn func(repos repository.Set) error) (err error) {
	tx, err := conn.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("store: begin tx: %w", err)
	}

	finishCtx := context.WithoutCancel(ctx)
	log := logger.From(ctx).With(logger.Layer("store"), logger.Component("store.tx"))

	defer func() {
		if p := recover(); p != nil {
			rollback(finishCtx, tx, log)
			panic(p)
		}
		if err != nil {
			rollback(finishCtx, tx, log)
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}
	if err = tx.Commit(finishCtx); err != nil {
		log.Warn("transaction commit failed", logger.Err(err))
		return err
	}
	log.Debug("transaction committed")
	return nil
}

func rollback(ctx context.Context, tx Tx, log *zap.Logger) {
	if err := tx.Rollback(ctx); err != nil && !errors.Is(err, repository.ErrTxDone) {
		log.Warn("transaction rollback failed", logger.Err(err))
		return
	}
	log.Debug("transaction aborted")
}
