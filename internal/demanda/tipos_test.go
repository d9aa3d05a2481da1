package demanda

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestListaTextosUnmarshal(t *testing.T) {
	casos := []struct {
		nome     string
		entrada  string
		esperado ListaTextos
	}{
		{"array simples", `["a","b"]`, ListaTextos{"a", "b"}},
		{"array codificado em string", `"[\"a\",\"b\"]"`, ListaTextos{"a", "b"}},
		{"números viram texto", `[1, true, "c"]`, ListaTextos{"1", "true", "c"}},
		{"string malformada degrada", `"não é json"`, ListaTextos{}},
		{"número degrada", `42`, ListaTextos{}},
		{"objeto degrada", `{"a":1}`, ListaTextos{}},
		{"null degrada", `null`, ListaTextos{}},
	}

	for _, caso := range casos {
		t.Run(caso.nome, func(t *testing.T) {
			var l ListaTextos
			if err := json.Unmarshal([]byte(caso.entrada), &l); err != nil {
				t.Fatalf("unmarshal nunca deveria falhar: %v", err)
			}
			if !reflect.DeepEqual(l, caso.esperado) {
				t.Errorf("resultado = %v, esperado %v", l, caso.esperado)
			}
		})
	}
}

func TestListaInteirosUnmarshal(t *testing.T) {
	casos := []struct {
		nome     string
		entrada  string
		esperado ListaInteiros
	}{
		{"array simples", `[1,2,3]`, ListaInteiros{1, 2, 3}},
		{"array codificado em string", `"[0,6]"`, ListaInteiros{0, 6}},
		{"strings numéricas convertem", `["3"," 4 "]`, ListaInteiros{3, 4}},
		{"itens não numéricos são ignorados", `[1,"x",2]`, ListaInteiros{1, 2}},
		{"objeto degrada", `{"dia":1}`, ListaInteiros{}},
	}

	for _, caso := range casos {
		t.Run(caso.nome, func(t *testing.T) {
			var l ListaInteiros
			if err := json.Unmarshal([]byte(caso.entrada), &l); err != nil {
				t.Fatalf("unmarshal nunca deveria falhar: %v", err)
			}
			if !reflect.DeepEqual(l, caso.esperado) {
				t.Errorf("resultado = %v, esperado %v", l, caso.esperado)
			}
		})
	}
}

func TestBoolFlexivelUnmarshal(t *testing.T) {
	casos := []struct {
		entrada  string
		esperado bool
	}{
		{`null`, false},
		{`false`, false},
		{`0`, false},
		{`""`, false},
		{`true`, true},
		{`1`, true},
		{`"sim"`, true},
		{`"false"`, true}, // string não vazia é verdadeira
		{`[]`, true},
		{`{}`, true},
	}

	for _, caso := range casos {
		t.Run(caso.entrada, func(t *testing.T) {
			var b BoolFlexivel
			if err := json.Unmarshal([]byte(caso.entrada), &b); err != nil {
				t.Fatalf("unmarshal nunca deveria falhar: %v", err)
			}
			if bool(b) != caso.esperado {
				t.Errorf("%s = %v, esperado %v", caso.entrada, bool(b), caso.esperado)
			}
		})
	}
}
