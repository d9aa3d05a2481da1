package auditoria

import (
	"encoding/json"
	"time"
)

const (
	AcaoCriacao      = "CREATE"
	AcaoAtualizacao  = "UPDATE"
	AcaoExclusao     = "DELETE"
	AcaoRestauracao  = "RESTORE"
	AcaoAutenticacao = "LOGIN"
)

// Entrada descreve um evento a registrar na trilha de auditoria.
type Entrada struct {
	Acao          string
	Tabela        string
	RegistroID    int64
	ValorAnterior any
	ValorNovo     any
	UsuarioID     *int64
	EnderecoIP    string
}

// Registro é a forma persistida, imutável depois de gravada.
type Registro struct {
	ID            int64           `json:"id"`
	Acao          string          `json:"acao"`
	Tabela        string          `json:"tabela"`
	RegistroID    int64           `json:"registroId"`
	ValorAnterior json.RawMessage `json:"valorAnterior,omitempty"`
	ValorNovo     json.RawMessage `json:"valorNovo,omitempty"`
	UsuarioID     *int64          `json:"usuarioId,omitempty"`
	EnderecoIP    string          `json:"enderecoIp,omitempty"`
	CriadaEm      time.Time       `json:"criadaEm"`
}
