package demanda

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
)

// ListaTextos aceita array JSON, string contendo um array codificado ou
// qualquer outro formato; conteúdo malformado degrada para lista vazia.
type ListaTextos []string

// ListaInteiros é o equivalente para índices numéricos (dias da semana).
type ListaInteiros []int

// BoolFlexivel coage qualquer valor JSON sob regras de truthiness:
// null, false, 0 e string vazia são falsos; todo o resto é verdadeiro.
type BoolFlexivel bool

func (l *ListaTextos) UnmarshalJSON(data []byte) error {
	*l = ListaTextos{}

	var bruto any
	if err := json.Unmarshal(data, &bruto); err != nil {
		log.Warn().Str("campo", "lista").Msg("coleção malformada descartada")
		return nil
	}

	switch v := bruto.(type) {
	case []any:
		*l = textosDeSlice(v)
	case string:
		var itens []any
		if err := json.Unmarshal([]byte(v), &itens); err != nil {
			log.Warn().Str("valor", v).Msg("string de coleção malformada descartada")
			return nil
		}
		*l = textosDeSlice(itens)
	}
	return nil
}

func (l *ListaInteiros) UnmarshalJSON(data []byte) error {
	*l = ListaInteiros{}

	var bruto any
	if err := json.Unmarshal(data, &bruto); err != nil {
		log.Warn().Str("campo", "diasSemana").Msg("coleção malformada descartada")
		return nil
	}

	switch v := bruto.(type) {
	case []any:
		*l = inteirosDeSlice(v)
	case string:
		var itens []any
		if err := json.Unmarshal([]byte(v), &itens); err != nil {
			log.Warn().Str("valor", v).Msg("string de coleção malformada descartada")
			return nil
		}
		*l = inteirosDeSlice(itens)
	}
	return nil
}

func (b *BoolFlexivel) UnmarshalJSON(data []byte) error {
	var bruto any
	if err := json.Unmarshal(data, &bruto); err != nil {
		*b = false
		return nil
	}

	switch v := bruto.(type) {
	case nil:
		*b = false
	case bool:
		*b = BoolFlexivel(v)
	case float64:
		*b = v != 0
	case string:
		*b = v != ""
	default:
		// arrays e objetos contam como presentes
		*b = true
	}
	return nil
}

func textosDeSlice(itens []any) ListaTextos {
	out := make(ListaTextos, 0, len(itens))
	for _, item := range itens {
		switch v := item.(type) {
		case string:
			out = append(out, v)
		case float64:
			out = append(out, strconv.FormatFloat(v, 'f', -1, 64))
		case bool:
			out = append(out, strconv.FormatBool(v))
		}
	}
	return out
}

func inteirosDeSlice(itens []any) ListaInteiros {
	out := make(ListaInteiros, 0, len(itens))
	for _, item := range itens {
		switch v := item.(type) {
		case float64:
			out = append(out, int(v))
		case string:
			if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
				out = append(out, n)
			}
		}
	}
	return out
}
