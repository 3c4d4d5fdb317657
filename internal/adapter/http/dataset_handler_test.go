package http

import (
	"context"
	"encoding/json"
	stdhttp "net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"credapp/internal/adapter/opener"
	"credapp/internal/domain/client"
	"credapp/internal/domain/uow"
	"credapp/internal/testutil/clientmock"
	"credapp/internal/testutil/uowmock"
	"credapp/internal/usecase/dataset"
)

const datasetCSV = "id_cliente,nome,cpf,idade,score_credito,inadimplente\n" +
	"1,Ana Souza,123.456.789-00,30,Bom,false\n" +
	"2,Bruno Lima,987.654.321-00,45,Ruim,true\n"

func newDatasetHandler(t *testing.T, files map[string]string) (*DatasetHandler, *[]client.Client) {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	var stored []client.Client
	repo := &clientmock.Repo{
		CreateBatchFn: func(ctx context.Context, clients []client.Client, batchSize int) error {
			stored = append(stored, clients...)
			return nil
		},
	}
	svc := dataset.NewService(opener.NewFileOpener(dir), uowmock.Passthrough(uow.Repos{Clients: repo}), repo, nil, nil)
	return NewDatasetHandler(svc), &stored
}

func importCall(t *testing.T, h *DatasetHandler, body any) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	c := newEchoWithValidator().NewContext(newJSONRequest(stdhttp.MethodPost, "/dataset/import", body), rec)
	if err := h.Import(c); err != nil {
		t.Fatalf("Import error: %v", err)
	}
	return rec
}

func TestDatasetImport_Success(t *testing.T) {
	h, stored := newDatasetHandler(t, map[string]string{"clientes.csv": datasetCSV})

	rec := importCall(t, h, map[string]any{"caminho": "clientes.csv", "batch_size": 1})
	if rec.Code != stdhttp.StatusOK {
		t.Fatalf("status = %d (%s)", rec.Code, rec.Body.String())
	}
	var res dataset.Result
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("bad json: %v", err)
	}
	if res.Rows != 2 || res.Format != dataset.FormatCSV || res.Source != "file" || len(res.SHA256) != 64 {
		t.Fatalf("result = %+v", res)
	}
	if len(*stored) != 2 || (*stored)[1].ScoreNumeric != 450 || !(*stored)[1].Defaulter {
		t.Fatalf("stored = %+v", *stored)
	}
}

func TestDatasetImport_Errors(t *testing.T) {
	h, _ := newDatasetHandler(t, map[string]string{
		"sem_cpf.csv":  "id_cliente,nome\n1,Ana\n",
		"linha.csv":    "id_cliente,nome,cpf,idade\n1,Ana,123,trinta\n",
		"clientes.csv": datasetCSV,
	})

	tests := []struct {
		name string
		body any
		want int
	}{
		{"broken json", `{"caminho":`, stdhttp.StatusBadRequest},
		{"missing path", map[string]any{}, stdhttp.StatusUnprocessableEntity},
		{"batch too large", map[string]any{"caminho": "clientes.csv", "batch_size": 9000}, stdhttp.StatusUnprocessableEntity},
		{"outside dataset dir", map[string]any{"caminho": "../etc/passwd"}, stdhttp.StatusBadRequest},
		{"missing file", map[string]any{"caminho": "nada.csv"}, stdhttp.StatusBadRequest},
		{"directory", map[string]any{"caminho": "."}, stdhttp.StatusBadRequest},
		{"missing column", map[string]any{"caminho": "sem_cpf.csv"}, stdhttp.StatusBadRequest},
		{"bad row", map[string]any{"caminho": "linha.csv"}, stdhttp.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := importCall(t, h, tt.body)
			if rec.Code != tt.want {
				t.Fatalf("status = %d, want %d (%s)", rec.Code, tt.want, rec.Body.String())
			}
		})
	}
}
