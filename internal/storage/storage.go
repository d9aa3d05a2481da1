package storage

import "context"

// UploadInput representa um blob a enviar para o destino externo.
type UploadInput struct {
	Key         string
	Body        []byte
	ContentType string
}

// UploadResult descreve o artefato persistido.
type UploadResult struct {
	URL  string
	ETag string
}

// Uploader define o comportamento mínimo para guardar cópias externas
// (hoje, arquivos de backup).
type Uploader interface {
	Upload(ctx context.Context, input UploadInput) (*UploadResult, error)
}
