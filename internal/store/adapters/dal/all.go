// Package dal importa todos los adapters para auto-registro.
// Importar este paquete en los main para habilitar todos los drivers:
//
//	import _ "github.com/dropDatabas3/taskhub/internal/store/adapters/dal"
package dal

import (
	_ "github.com/dropDatabas3/taskhub/internal/store/adapters/memory"
	_ "github.com/dropDatabas3/taskhub/internal/store/adapters/mongo"
	_ "github.com/dropDatabas3/taskhub/internal/store/adapters/pg"
)
