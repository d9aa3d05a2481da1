package backup

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/gestaodemandas/plataforma/internal/config"
	"github.com/gestaodemandas/plataforma/internal/demanda"
	"github.com/gestaodemandas/plataforma/internal/storage"
)

type fonteStub struct {
	demandas  []demanda.Demanda
	upserts   []demanda.Demanda
	falharID  int64
	sequencia int
}

func (f *fonteStub) ListarTodas(ctx context.Context) ([]demanda.Demanda, error) {
	return f.demandas, nil
}

func (f *fonteStub) UpsertPorID(ctx context.Context, d demanda.Demanda) error {
	if f.falharID != 0 && d.ID == f.falharID {
		return fmt.Errorf("violação simulada")
	}
	f.upserts = append(f.upserts, d)
	return nil
}

func (f *fonteStub) AjustarSequencia(ctx context.Context) error {
	f.sequencia++
	return nil
}

func novoServico(t *testing.T, fonte FonteDemandas, uploader storage.Uploader) *Service {
	t.Helper()

	cfg := config.BackupConfig{
		Dir:               t.TempDir(),
		Interval:          time.Hour,
		RetentionInterval: time.Hour,
		RetentionMax:      10,
	}

	svc, err := NewService(fonte, cfg, uploader, zerolog.Nop())
	if err != nil {
		t.Fatalf("criação do serviço falhou: %v", err)
	}
	return svc
}

func TestExportarGravaArquivo(t *testing.T) {
	fonte := &fonteStub{demandas: []demanda.Demanda{
		{ID: 1, Nome: "Trocar lâmpadas"},
		{ID: 2, Nome: "Pintar muro"},
	}}
	svc := novoServico(t, fonte, nil)

	nome, err := svc.Exportar(context.Background(), MotivoManual)
	if err != nil {
		t.Fatalf("exportação falhou: %v", err)
	}
	if !strings.HasPrefix(nome, "backup-manual-") || !strings.HasSuffix(nome, ".json") {
		t.Errorf("nome de arquivo inesperado: %q", nome)
	}

	conteudo, err := os.ReadFile(filepath.Join(svc.cfg.Dir, nome))
	if err != nil {
		t.Fatalf("arquivo não gravado: %v", err)
	}

	var arquivo Arquivo
	if err := json.Unmarshal(conteudo, &arquivo); err != nil {
		t.Fatalf("conteúdo inválido: %v", err)
	}
	if arquivo.Versao != FormatoVersao {
		t.Errorf("versão = %q, esperado %q", arquivo.Versao, FormatoVersao)
	}
	if arquivo.TotalDemandas != 2 || len(arquivo.Demandas) != 2 {
		t.Errorf("total = %d com %d demandas", arquivo.TotalDemandas, len(arquivo.Demandas))
	}
}

func TestExportarTabelaVazia(t *testing.T) {
	svc := novoServico(t, &fonteStub{}, nil)

	nome, err := svc.Exportar(context.Background(), MotivoAutomatico)
	if err != nil {
		t.Fatalf("exportação de tabela vazia falhou: %v", err)
	}

	conteudo, err := os.ReadFile(filepath.Join(svc.cfg.Dir, nome))
	if err != nil {
		t.Fatalf("arquivo não gravado: %v", err)
	}

	var arquivo Arquivo
	if err := json.Unmarshal(conteudo, &arquivo); err != nil {
		t.Fatalf("conteúdo inválido: %v", err)
	}
	if arquivo.TotalDemandas != 0 || arquivo.Demandas == nil {
		t.Errorf("tabela vazia deveria produzir lista vazia, veio %+v", arquivo)
	}
}

func TestExportarUploadFalhoNaoImpedeGravacao(t *testing.T) {
	svc := novoServico(t, &fonteStub{}, storage.NoopUploader{})

	nome, err := svc.Exportar(context.Background(), MotivoManual)
	if err != nil {
		t.Fatalf("falha de upload não deveria impedir a exportação: %v", err)
	}
	if _, err := os.Stat(filepath.Join(svc.cfg.Dir, nome)); err != nil {
		t.Errorf("arquivo local ausente: %v", err)
	}
}

func TestRestaurarParcial(t *testing.T) {
	fonte := &fonteStub{falharID: 99}
	svc := novoServico(t, fonte, nil)

	entradas := []json.RawMessage{
		json.RawMessage(`{"id":1,"nome":"Trocar lâmpadas","status":"pendente"}`),
		json.RawMessage(`{"id":99,"nome":"Vai falhar no banco"}`),
		json.RawMessage(`"não sou um objeto"`),
		json.RawMessage(`{"nome":"Sem id"}`),
	}

	resultado := svc.Restaurar(context.Background(), entradas)

	if resultado.Sucessos != 1 {
		t.Errorf("sucessos = %d, esperado 1", resultado.Sucessos)
	}
	if resultado.Falhas != 3 {
		t.Errorf("falhas = %d, esperado 3", resultado.Falhas)
	}
	if len(resultado.Erros) != 3 {
		t.Fatalf("erros = %v, esperados 3 itens", resultado.Erros)
	}
	if !strings.HasPrefix(resultado.Erros[0], "registro 1:") {
		t.Errorf("erro deveria citar o índice do registro: %q", resultado.Erros[0])
	}
	if fonte.sequencia != 1 {
		t.Errorf("sequência ajustada %d vezes, esperado 1", fonte.sequencia)
	}
	if len(fonte.upserts) != 1 || fonte.upserts[0].ID != 1 {
		t.Errorf("upserts = %+v", fonte.upserts)
	}
}

func TestExportarRestaurarRoundTrip(t *testing.T) {
	limite := time.Date(2026, 9, 15, 0, 0, 0, 0, time.Local)
	concluida := time.Date(2026, 8, 1, 10, 30, 0, 0, time.Local)
	criador := int64(3)
	modificador := int64(2)
	fonte := &fonteStub{demandas: []demanda.Demanda{
		{ID: 1, Tag: "DMD-1-aa", Nome: "Trocar lâmpadas", Status: "pendente", Atribuidos: []string{"Ana"}, DataLimite: &limite},
		{
			ID: 2, Tag: "DMD-2-bb", Nome: "Pintar muro", Status: "concluida", DiasSemana: []int{1, 3},
			ConcluidaEm: &concluida, CriadoPor: &criador, ModificadoPor: &modificador,
		},
	}}
	svc := novoServico(t, fonte, nil)

	arquivo, err := svc.Snapshot(context.Background(), MotivoManual)
	if err != nil {
		t.Fatalf("snapshot falhou: %v", err)
	}

	entradas := make([]json.RawMessage, len(arquivo.Demandas))
	for i, d := range arquivo.Demandas {
		bruto, err := json.Marshal(d)
		if err != nil {
			t.Fatal(err)
		}
		entradas[i] = bruto
	}

	resultado := svc.Restaurar(context.Background(), entradas)
	if resultado.Sucessos != 2 || resultado.Falhas != 0 {
		t.Fatalf("round trip: %+v", resultado)
	}

	ids := map[int64]demanda.Demanda{}
	for _, d := range fonte.upserts {
		ids[d.ID] = d
	}
	for _, original := range fonte.demandas {
		restaurada, ok := ids[original.ID]
		if !ok {
			t.Fatalf("id %d não restaurado", original.ID)
		}
		if restaurada.Nome != original.Nome || restaurada.Tag != original.Tag || restaurada.Status != original.Status {
			t.Errorf("campos divergem após round trip:\noriginal   %+v\nrestaurada %+v", original, restaurada)
		}
	}

	// proveniência e conclusão atravessam o round trip intactas
	segunda := ids[2]
	if segunda.CriadoPor == nil || *segunda.CriadoPor != criador {
		t.Errorf("criadoPor perdido no round trip: %v", segunda.CriadoPor)
	}
	if segunda.ModificadoPor == nil || *segunda.ModificadoPor != modificador {
		t.Errorf("modificadoPor perdido no round trip: %v", segunda.ModificadoPor)
	}
	if segunda.ConcluidaEm == nil || !segunda.ConcluidaEm.Equal(concluida) {
		t.Errorf("concluidaEm perdido no round trip: %v", segunda.ConcluidaEm)
	}
}

func TestRestaurarLimitaMensagensDeErro(t *testing.T) {
	svc := novoServico(t, &fonteStub{}, nil)

	entradas := make([]json.RawMessage, 15)
	for i := range entradas {
		entradas[i] = json.RawMessage(`{"nome":"sem id"}`)
	}

	resultado := svc.Restaurar(context.Background(), entradas)

	if resultado.Falhas != 15 {
		t.Errorf("falhas = %d, esperado 15", resultado.Falhas)
	}
	if len(resultado.Erros) != 10 {
		t.Errorf("mensagens = %d, o teto é 10", len(resultado.Erros))
	}
}

func TestRetencaoMantemMaisRecentes(t *testing.T) {
	svc := novoServico(t, &fonteStub{}, nil)
	svc.cfg.RetentionMax = 3

	for i := 1; i <= 5; i++ {
		nome := fmt.Sprintf("backup-automatico-2026010%d-120000.json", i)
		if err := os.WriteFile(filepath.Join(svc.cfg.Dir, nome), []byte("{}"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	// manuais ficam fora da varredura
	manual := "backup-manual-20260101-120000.json"
	if err := os.WriteFile(filepath.Join(svc.cfg.Dir, manual), []byte("{}"), 0o644); err != nil {
		t.Fatal(err)
	}

	svc.Retencao()

	restantes, err := os.ReadDir(svc.cfg.Dir)
	if err != nil {
		t.Fatal(err)
	}

	nomes := make(map[string]bool, len(restantes))
	for _, entrada := range restantes {
		nomes[entrada.Name()] = true
	}

	if len(nomes) != 4 {
		t.Fatalf("restaram %d arquivos, esperados 4: %v", len(nomes), nomes)
	}
	if !nomes[manual] {
		t.Error("backup manual não deveria ser removido")
	}
	for i := 3; i <= 5; i++ {
		nome := fmt.Sprintf("backup-automatico-2026010%d-120000.json", i)
		if !nomes[nome] {
			t.Errorf("backup recente %q foi removido", nome)
		}
	}
}

func TestDispararNaoBloqueia(t *testing.T) {
	svc := novoServico(t, &fonteStub{}, nil)

	// fila com capacidade 8: estourar não pode travar o chamador
	for i := 0; i < 20; i++ {
		svc.Disparar(MotivoAprovacao)
	}
}
