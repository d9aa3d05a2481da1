package backup

import (
	"time"

	"github.com/gestaodemandas/plataforma/internal/demanda"
)

// FormatoVersao identifica o layout do arquivo exportado.
const FormatoVersao = "1.0"

const (
	MotivoAutomatico  = "automatico"
	MotivoManual      = "manual"
	MotivoAprovacao   = "aprovacao"
	MotivoRejeicao    = "rejeicao"
	MotivoPreExclusao = "pre-exclusao"
	MotivoDesligar    = "desligamento"
	MotivoEmergencia  = "emergencia"
)

// Arquivo é o conteúdo serializado de uma exportação completa.
type Arquivo struct {
	Versao        string            `json:"versao"`
	Data          time.Time         `json:"data"`
	Tipo          string            `json:"tipo,omitempty"`
	TotalDemandas int               `json:"totalDemandas"`
	Demandas      []demanda.Demanda `json:"demandas"`
}

// ResultadoRestauracao consolida o desfecho de um restore em lote.
type ResultadoRestauracao struct {
	Sucessos int      `json:"sucessos"`
	Falhas   int      `json:"falhas"`
	Erros    []string `json:"erros"`
}
