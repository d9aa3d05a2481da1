package usuario

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gestaodemandas/plataforma/internal/auth"
	"github.com/gestaodemandas/plataforma/internal/db"
)

const colunasUsuario = `id, nome, email, senha_hash, nivel, pontos, conquistas, papel`

// Repository provê acesso às tabelas de usuários e feedbacks.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository cria instância do repositório.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// seedRoster é o elenco fixo criado no bootstrap. A senha inicial deve ser
// trocada com cmd/hashpass em instalações reais.
var seedRoster = []Usuario{
	{ID: 1, Nome: "Administração", Email: "admin@demandas.local", Papel: PapelGestor, Nivel: "Veterano"},
	{ID: 2, Nome: "Gestor Geral", Email: "gestor@demandas.local", Papel: PapelGestor, Nivel: "Veterano"},
	{ID: 3, Nome: "Ana Souza", Email: "ana.souza@demandas.local", Papel: PapelFuncionario, Nivel: "Iniciante"},
	{ID: 4, Nome: "Bruno Lima", Email: "bruno.lima@demandas.local", Papel: PapelFuncionario, Nivel: "Iniciante"},
	{ID: 5, Nome: "Carla Mendes", Email: "carla.mendes@demandas.local", Papel: PapelFuncionario, Nivel: "Intermediário"},
}

const senhaInicial = "mudar@123"

// SeedPadrao insere o elenco fixo de usuários de forma idempotente.
func (r *Repository) SeedPadrao(ctx context.Context) error {
	hash, err := auth.Hash(senhaInicial)
	if err != nil {
		return err
	}

	return db.WithTx(ctx, r.pool, func(txCtx context.Context, tx pgx.Tx) error {
		for _, u := range seedRoster {
			nivel := u.Nivel
			if nivel == "" {
				nivel = "Iniciante"
			}
			_, err := tx.Exec(txCtx, `
                INSERT INTO usuarios (id, nome, email, senha_hash, nivel, pontos, conquistas, papel)
                VALUES ($1, $2, $3, $4, $5, 0, '{}', $6)
                ON CONFLICT (id) DO NOTHING
            `, u.ID, u.Nome, u.Email, hash, nivel, u.Papel)
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// Listar devolve todos os usuários ordenados por nome.
func (r *Repository) Listar(ctx context.Context) ([]Usuario, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+colunasUsuario+` FROM usuarios ORDER BY nome ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var usuarios []Usuario
	for rows.Next() {
		u, err := scanUsuario(rows)
		if err != nil {
			return nil, err
		}
		usuarios = append(usuarios, *u)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return usuarios, nil
}

// BuscarPorEmail localiza usuário pelo e-mail normalizado.
func (r *Repository) BuscarPorEmail(ctx context.Context, email string) (*Usuario, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	row := r.pool.QueryRow(ctx, `SELECT `+colunasUsuario+` FROM usuarios WHERE lower(email) = $1`, email)
	return scanUsuario(row)
}

// BuscarPorID localiza usuário pelo id.
func (r *Repository) BuscarPorID(ctx context.Context, id int64) (*Usuario, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+colunasUsuario+` FROM usuarios WHERE id = $1`, id)
	return scanUsuario(row)
}

// CriarFeedback insere um feedback para o funcionário.
func (r *Repository) CriarFeedback(ctx context.Context, input CriarFeedbackInput) (*Feedback, error) {
	row := r.pool.QueryRow(ctx, `
        INSERT INTO feedbacks (funcionario_id, gestor_id, tipo, mensagem)
        VALUES ($1, $2, $3, $4)
        RETURNING id, funcionario_id, gestor_id, tipo, mensagem, criado_em
    `, input.FuncionarioID, input.GestorID, strings.ToLower(strings.TrimSpace(input.Tipo)), strings.TrimSpace(input.Mensagem))

	var f Feedback
	if err := row.Scan(&f.ID, &f.FuncionarioID, &f.GestorID, &f.Tipo, &f.Mensagem, &f.CriadoEm); err != nil {
		return nil, err
	}
	return &f, nil
}

// ListarFeedbacks lista feedbacks, opcionalmente de um único funcionário.
func (r *Repository) ListarFeedbacks(ctx context.Context, funcionarioID *int64) ([]Feedback, error) {
	query := `SELECT id, funcionario_id, gestor_id, tipo, mensagem, criado_em FROM feedbacks`
	args := []any{}
	if funcionarioID != nil {
		query += ` WHERE funcionario_id = $1`
		args = append(args, *funcionarioID)
	}
	query += ` ORDER BY criado_em DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var feedbacks []Feedback
	for rows.Next() {
		var f Feedback
		if err := rows.Scan(&f.ID, &f.FuncionarioID, &f.GestorID, &f.Tipo, &f.Mensagem, &f.CriadoEm); err != nil {
			return nil, err
		}
		feedbacks = append(feedbacks, f)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return feedbacks, nil
}

func scanUsuario(row pgx.Row) (*Usuario, error) {
	var u Usuario
	if err := row.Scan(&u.ID, &u.Nome, &u.Email, &u.SenhaHash, &u.Nivel, &u.Pontos, &u.Conquistas, &u.Papel); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNaoEncontrado
		}
		return nil, err
	}
	if u.Conquistas == nil {
		u.Conquistas = []string{}
	}
	return &u, nil
}
