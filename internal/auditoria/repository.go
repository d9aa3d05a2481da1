package auditoria

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository grava e consulta a trilha de auditoria.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository cria instância do repositório.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Inserir grava um evento. Snapshots são serializados como JSONB.
func (r *Repository) Inserir(ctx context.Context, e Entrada) error {
	anterior, err := serializar(e.ValorAnterior)
	if err != nil {
		return err
	}
	novo, err := serializar(e.ValorNovo)
	if err != nil {
		return err
	}

	_, err = r.pool.Exec(ctx, `
        INSERT INTO auditoria (acao, tabela, registro_id, valor_anterior, valor_novo, usuario_id, endereco_ip)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
    `, e.Acao, e.Tabela, e.RegistroID, anterior, novo, e.UsuarioID, e.EnderecoIP)
	return err
}

// ListarRecentes devolve os eventos mais novos primeiro.
func (r *Repository) ListarRecentes(ctx context.Context, limit int) ([]Registro, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	rows, err := r.pool.Query(ctx, `
        SELECT id, acao, tabela, registro_id, valor_anterior, valor_novo, usuario_id, endereco_ip, criada_em
        FROM auditoria
        ORDER BY criada_em DESC
        LIMIT $1
    `, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var registros []Registro
	for rows.Next() {
		var reg Registro
		if err := rows.Scan(&reg.ID, &reg.Acao, &reg.Tabela, &reg.RegistroID, &reg.ValorAnterior,
			&reg.ValorNovo, &reg.UsuarioID, &reg.EnderecoIP, &reg.CriadaEm); err != nil {
			return nil, err
		}
		registros = append(registros, reg)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return registros, nil
}

func serializar(valor any) ([]byte, error) {
	if valor == nil {
		return nil, nil
	}
	return json.Marshal(valor)
}
