package repository

import "context"

// SequenceRepository contadores de numeración de documentos por (empresa, clave).
type SequenceRepository interface {
	// Next persiste max(actual, floor)+1 y lo devuelve. La fila queda bloqueada hasta el fin de la tx.
	Next(ctx context.Context, companyID, scopeKey string, floor int64) (int64, error)
}
