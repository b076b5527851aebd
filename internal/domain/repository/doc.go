// Package repository define las entidades de taskhub y los contratos de
// persistencia que implementan los adapters de internal/store/adapters
// (mongo, pg, memory).
//
// Convenciones:
//   - Context siempre es el primer parámetro.
//   - Los IDs son strings opacos; cada adapter decide su formato
//     (ObjectID hex en mongo, UUID en pg y memory).
//   - Los emails llegan normalizados (trim + lower) desde los services.
//   - Los errores de dominio están en errors.go. Las violaciones de unicidad
//     (email, provider+provider_id, nombre de rol) se reportan como ErrConflict.
package repository
