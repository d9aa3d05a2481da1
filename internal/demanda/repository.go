package demanda

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const colunas = `id, tag, solicitante_id, solicitante_nome, solicitante_email, categoria, prioridade, complexidade,
        nome, descricao, local, status, is_rotina, dias_semana, atribuidos, anexos_criacao, anexos_resolucao,
        comentario_gestor, comentario_rejeicao, criada_em, data_limite, atualizada_em, concluida_em, criado_por, modificado_por`

// Repository provê acesso à tabela de demandas.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository cria instância do repositório.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Criar insere uma nova demanda já normalizada.
func (r *Repository) Criar(ctx context.Context, e Entrada, dataLimite *time.Time, criadoPor *int64) (*Demanda, error) {
	query := fmt.Sprintf(`
        INSERT INTO demandas (tag, solicitante_id, solicitante_nome, solicitante_email, categoria, prioridade,
            complexidade, nome, descricao, local, status, is_rotina, dias_semana, atribuidos, anexos_criacao,
            anexos_resolucao, comentario_gestor, comentario_rejeicao, criada_em, data_limite, criado_por, modificado_por)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $21)
        RETURNING %s
    `, colunas)

	criadaEm := time.Now()
	if t, err := time.Parse(time.RFC3339, e.CriadaEm); err == nil {
		criadaEm = t
	}

	row := r.pool.QueryRow(ctx, query,
		nuloSeVazio(strings.TrimSpace(e.Tag)),
		e.SolicitanteID,
		strings.TrimSpace(e.SolicitanteNome),
		strings.TrimSpace(e.SolicitanteEmail),
		strings.TrimSpace(e.Categoria),
		strings.TrimSpace(e.Prioridade),
		strings.TrimSpace(e.Complexidade),
		strings.TrimSpace(e.Nome),
		strings.TrimSpace(e.Descricao),
		strings.TrimSpace(e.Local),
		strings.TrimSpace(e.Status),
		bool(e.IsRotina),
		[]int(e.DiasSemana),
		[]string(e.Atribuidos),
		[]string(e.AnexosCriacao),
		[]string(e.AnexosResolucao),
		e.ComentarioGestor,
		e.ComentarioRejeicao,
		criadaEm,
		dataLimite,
		criadoPor,
	)

	d, err := scanDemanda(row)
	if err != nil && violacaoUnicidade(err) {
		return nil, ErrTagDuplicada
	}
	return d, err
}

// Buscar recupera uma demanda pelo id.
func (r *Repository) Buscar(ctx context.Context, id int64) (*Demanda, error) {
	query := fmt.Sprintf(`SELECT %s FROM demandas WHERE id = $1`, colunas)
	return scanDemanda(r.pool.QueryRow(ctx, query, id))
}

// Listar aplica filtros simples com paginação, mais recentes primeiro.
func (r *Repository) Listar(ctx context.Context, filtro Filtro) ([]Demanda, error) {
	base := fmt.Sprintf(`SELECT %s FROM demandas`, colunas)

	var (
		clauses []string
		args    []any
		idx     = 1
	)

	if status := strings.TrimSpace(filtro.Status); status != "" {
		clauses = append(clauses, fmt.Sprintf("status = $%d", idx))
		args = append(args, status)
		idx++
	}
	if filtro.SolicitanteID != nil {
		clauses = append(clauses, fmt.Sprintf("solicitante_id = $%d", idx))
		args = append(args, *filtro.SolicitanteID)
		idx++
	}
	if categoria := strings.TrimSpace(filtro.Categoria); categoria != "" {
		clauses = append(clauses, fmt.Sprintf("categoria = $%d", idx))
		args = append(args, categoria)
		idx++
	}
	if prioridade := strings.TrimSpace(filtro.Prioridade); prioridade != "" {
		clauses = append(clauses, fmt.Sprintf("prioridade = $%d", idx))
		args = append(args, prioridade)
		idx++
	}

	query := base
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}

	limit := filtro.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	offset := filtro.Offset
	if offset < 0 {
		offset = 0
	}

	query += fmt.Sprintf(" ORDER BY criada_em DESC LIMIT $%d OFFSET $%d", idx, idx+1)
	args = append(args, limit, offset)

	return r.coletar(ctx, query, args...)
}

// ListarTodas devolve a tabela inteira, mais recentes primeiro.
func (r *Repository) ListarTodas(ctx context.Context) ([]Demanda, error) {
	query := fmt.Sprintf(`SELECT %s FROM demandas ORDER BY criada_em DESC`, colunas)
	return r.coletar(ctx, query)
}

// Atualizar aplica alteração parcial; campos nil preservam o valor atual.
// O timestamp de atualização e o modificador são sempre renovados.
func (r *Repository) Atualizar(ctx context.Context, alt Atualizacao) (*Demanda, error) {
	setParts := []string{"atualizada_em = now()"}
	args := []any{}
	idx := 1

	add := func(coluna string, valor any) {
		setParts = append(setParts, fmt.Sprintf("%s = $%d", coluna, idx))
		args = append(args, valor)
		idx++
	}

	if alt.Tag != nil {
		add("tag", strings.TrimSpace(*alt.Tag))
	}
	if alt.Categoria != nil {
		add("categoria", strings.TrimSpace(*alt.Categoria))
	}
	if alt.Prioridade != nil {
		add("prioridade", strings.TrimSpace(*alt.Prioridade))
	}
	if alt.Complexidade != nil {
		add("complexidade", strings.TrimSpace(*alt.Complexidade))
	}
	if alt.Nome != nil {
		add("nome", strings.TrimSpace(*alt.Nome))
	}
	if alt.Descricao != nil {
		add("descricao", strings.TrimSpace(*alt.Descricao))
	}
	if alt.Local != nil {
		add("local", strings.TrimSpace(*alt.Local))
	}
	if alt.Status != nil {
		add("status", strings.TrimSpace(*alt.Status))
	}
	if alt.IsRotina != nil {
		add("is_rotina", *alt.IsRotina)
	}
	if alt.DiasSemana != nil {
		add("dias_semana", *alt.DiasSemana)
	}
	if alt.Atribuidos != nil {
		add("atribuidos", *alt.Atribuidos)
	}
	if alt.AnexosCriacao != nil {
		add("anexos_criacao", *alt.AnexosCriacao)
	}
	if alt.AnexosResolucao != nil {
		add("anexos_resolucao", *alt.AnexosResolucao)
	}
	if alt.ComentarioGestor != nil {
		add("comentario_gestor", *alt.ComentarioGestor)
	}
	if alt.ComentarioRejeicao != nil {
		add("comentario_rejeicao", *alt.ComentarioRejeicao)
	}
	if alt.DataLimite != nil {
		add("data_limite", *alt.DataLimite)
	}
	if alt.ConcluidaEm != nil {
		add("concluida_em", *alt.ConcluidaEm)
	}
	add("modificado_por", alt.ModificadoPor)

	args = append(args, alt.ID)
	query := fmt.Sprintf(`
        UPDATE demandas
        SET %s
        WHERE id = $%d
        RETURNING %s
    `, strings.Join(setParts, ", "), idx, colunas)

	return scanDemanda(r.pool.QueryRow(ctx, query, args...))
}

// Excluir remove a demanda e devolve o registro removido.
func (r *Repository) Excluir(ctx context.Context, id int64) (*Demanda, error) {
	query := fmt.Sprintf(`DELETE FROM demandas WHERE id = $1 RETURNING %s`, colunas)
	return scanDemanda(r.pool.QueryRow(ctx, query, id))
}

// Pesquisar busca substring (case-insensitive) em nome, descrição, tag e categoria.
func (r *Repository) Pesquisar(ctx context.Context, termo string, limit int) ([]Demanda, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	query := fmt.Sprintf(`
        SELECT %s FROM demandas
        WHERE nome ILIKE $1 OR descricao ILIKE $1 OR tag ILIKE $1 OR categoria ILIKE $1
        ORDER BY criada_em DESC
        LIMIT $2
    `, colunas)

	padrao := "%" + escapaLike(strings.TrimSpace(termo)) + "%"
	return r.coletar(ctx, query, padrao, limit)
}

// Estatisticas agrega contagens por status e rotinas desde a data informada.
func (r *Repository) Estatisticas(ctx context.Context, desde time.Time) (*Estatisticas, error) {
	rows, err := r.pool.Query(ctx, `
        SELECT status, COUNT(*) FROM demandas
        WHERE criada_em >= $1
        GROUP BY status
    `, desde)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := &Estatisticas{PorStatus: map[string]int64{}}
	for rows.Next() {
		var status string
		var total int64
		if err := rows.Scan(&status, &total); err != nil {
			return nil, err
		}
		stats.PorStatus[status] = total
		stats.Total += total
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}

	err = r.pool.QueryRow(ctx, `
        SELECT COUNT(*) FROM demandas WHERE is_rotina AND criada_em >= $1
    `, desde).Scan(&stats.Rotinas)
	if err != nil {
		return nil, err
	}

	return stats, nil
}

// Contar devolve o total de demandas registradas.
func (r *Repository) Contar(ctx context.Context) (int64, error) {
	var total int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM demandas`).Scan(&total)
	return total, err
}

// UpsertPorID insere ou sobrescreve preservando o id, usado na restauração.
func (r *Repository) UpsertPorID(ctx context.Context, d Demanda) error {
	_, err := r.pool.Exec(ctx, `
        INSERT INTO demandas (id, tag, solicitante_id, solicitante_nome, solicitante_email, categoria, prioridade,
            complexidade, nome, descricao, local, status, is_rotina, dias_semana, atribuidos, anexos_criacao,
            anexos_resolucao, comentario_gestor, comentario_rejeicao, criada_em, data_limite, concluida_em,
            criado_por, modificado_por)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24)
        ON CONFLICT (id) DO UPDATE SET
            tag = EXCLUDED.tag,
            solicitante_id = EXCLUDED.solicitante_id,
            solicitante_nome = EXCLUDED.solicitante_nome,
            solicitante_email = EXCLUDED.solicitante_email,
            categoria = EXCLUDED.categoria,
            prioridade = EXCLUDED.prioridade,
            complexidade = EXCLUDED.complexidade,
            nome = EXCLUDED.nome,
            descricao = EXCLUDED.descricao,
            local = EXCLUDED.local,
            status = EXCLUDED.status,
            is_rotina = EXCLUDED.is_rotina,
            dias_semana = EXCLUDED.dias_semana,
            atribuidos = EXCLUDED.atribuidos,
            anexos_criacao = EXCLUDED.anexos_criacao,
            anexos_resolucao = EXCLUDED.anexos_resolucao,
            comentario_gestor = EXCLUDED.comentario_gestor,
            comentario_rejeicao = EXCLUDED.comentario_rejeicao,
            data_limite = EXCLUDED.data_limite,
            concluida_em = EXCLUDED.concluida_em,
            criado_por = EXCLUDED.criado_por,
            modificado_por = EXCLUDED.modificado_por,
            atualizada_em = now()
    `,
		d.ID, nuloSeVazio(d.Tag), d.SolicitanteID, d.SolicitanteNome, d.SolicitanteEmail, d.Categoria,
		d.Prioridade, d.Complexidade, d.Nome, d.Descricao, d.Local, d.Status, d.IsRotina,
		d.DiasSemana, d.Atribuidos, d.AnexosCriacao, d.AnexosResolucao,
		d.ComentarioGestor, d.ComentarioRejeicao, d.CriadaEm, d.DataLimite, d.ConcluidaEm,
		d.CriadoPor, d.ModificadoPor,
	)
	return err
}

// AjustarSequencia realinha o gerador de ids após restauração com ids explícitos.
func (r *Repository) AjustarSequencia(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, `
        SELECT setval(pg_get_serial_sequence('demandas', 'id'),
            GREATEST((SELECT COALESCE(MAX(id), 1) FROM demandas), 1))
    `)
	return err
}

func (r *Repository) coletar(ctx context.Context, query string, args ...any) ([]Demanda, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var demandas []Demanda
	for rows.Next() {
		d, err := scanDemanda(rows)
		if err != nil {
			return nil, err
		}
		demandas = append(demandas, *d)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return demandas, nil
}

func scanDemanda(row pgx.Row) (*Demanda, error) {
	var (
		d   Demanda
		tag *string
	)
	err := row.Scan(
		&d.ID, &tag, &d.SolicitanteID, &d.SolicitanteNome, &d.SolicitanteEmail, &d.Categoria,
		&d.Prioridade, &d.Complexidade, &d.Nome, &d.Descricao, &d.Local, &d.Status, &d.IsRotina,
		&d.DiasSemana, &d.Atribuidos, &d.AnexosCriacao, &d.AnexosResolucao,
		&d.ComentarioGestor, &d.ComentarioRejeicao, &d.CriadaEm, &d.DataLimite, &d.AtualizadaEm,
		&d.ConcluidaEm, &d.CriadoPor, &d.ModificadoPor,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNaoEncontrada
		}
		return nil, err
	}
	if tag != nil {
		d.Tag = *tag
	}
	materializar(&d)
	return &d, nil
}

// materializar garante coleções como arrays na representação canônica.
func materializar(d *Demanda) {
	if d.DiasSemana == nil {
		d.DiasSemana = []int{}
	}
	if d.Atribuidos == nil {
		d.Atribuidos = []string{}
	}
	if d.AnexosCriacao == nil {
		d.AnexosCriacao = []string{}
	}
	if d.AnexosResolucao == nil {
		d.AnexosResolucao = []string{}
	}
}

func violacaoUnicidade(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func nuloSeVazio(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}

func escapaLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "%", `\%`)
	return strings.ReplaceAll(s, "_", `\_`)
}
