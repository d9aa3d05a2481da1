package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// schema reflete migrations/001_init.sql; mantido aqui para bootstrap
// idempotente em ambientes sem ferramenta de migração.
const schema = `
CREATE TABLE IF NOT EXISTS usuarios (
    id          BIGINT PRIMARY KEY,
    nome        TEXT NOT NULL UNIQUE,
    email       TEXT NOT NULL UNIQUE,
    senha_hash  TEXT NOT NULL,
    nivel       TEXT NOT NULL DEFAULT 'Iniciante',
    pontos      INT NOT NULL DEFAULT 0,
    conquistas  TEXT[] NOT NULL DEFAULT '{}',
    papel       TEXT NOT NULL DEFAULT 'funcionario'
);

CREATE TABLE IF NOT EXISTS demandas (
    id                  BIGSERIAL PRIMARY KEY,
    tag                 TEXT UNIQUE,
    solicitante_id      BIGINT NOT NULL DEFAULT 1,
    solicitante_nome    TEXT NOT NULL DEFAULT '',
    solicitante_email   TEXT NOT NULL DEFAULT '',
    categoria           TEXT NOT NULL DEFAULT '',
    prioridade          TEXT NOT NULL DEFAULT '',
    complexidade        TEXT NOT NULL DEFAULT '',
    nome                TEXT NOT NULL DEFAULT '',
    descricao           TEXT NOT NULL DEFAULT '',
    local               TEXT NOT NULL DEFAULT '',
    status              TEXT NOT NULL DEFAULT 'pendente',
    is_rotina           BOOLEAN NOT NULL DEFAULT FALSE,
    dias_semana         INT[] NOT NULL DEFAULT '{}',
    atribuidos          TEXT[] NOT NULL DEFAULT '{}',
    anexos_criacao      TEXT[] NOT NULL DEFAULT '{}',
    anexos_resolucao    TEXT[] NOT NULL DEFAULT '{}',
    comentario_gestor   TEXT,
    comentario_rejeicao TEXT,
    criada_em           TIMESTAMPTZ NOT NULL DEFAULT now(),
    data_limite         DATE,
    atualizada_em       TIMESTAMPTZ NOT NULL DEFAULT now(),
    concluida_em        TIMESTAMPTZ,
    criado_por          BIGINT,
    modificado_por      BIGINT
);

CREATE INDEX IF NOT EXISTS idx_demandas_status ON demandas (status);
CREATE INDEX IF NOT EXISTS idx_demandas_criada_em ON demandas (criada_em DESC);
CREATE INDEX IF NOT EXISTS idx_demandas_solicitante ON demandas (solicitante_id);
CREATE INDEX IF NOT EXISTS idx_demandas_categoria ON demandas (categoria);

CREATE TABLE IF NOT EXISTS auditoria (
    id             BIGSERIAL PRIMARY KEY,
    acao           TEXT NOT NULL,
    tabela         TEXT NOT NULL,
    registro_id    BIGINT NOT NULL,
    valor_anterior JSONB,
    valor_novo     JSONB,
    usuario_id     BIGINT,
    endereco_ip    TEXT,
    criada_em      TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_auditoria_registro ON auditoria (tabela, registro_id);

CREATE TABLE IF NOT EXISTS feedbacks (
    id             BIGSERIAL PRIMARY KEY,
    funcionario_id BIGINT NOT NULL,
    gestor_id      BIGINT NOT NULL DEFAULT 2,
    tipo           TEXT NOT NULL,
    mensagem       TEXT NOT NULL,
    criado_em      TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_feedbacks_funcionario ON feedbacks (funcionario_id);
`

// Bootstrap aplica o schema base de forma idempotente.
func Bootstrap(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, schema)
	return err
}
