package domain

import "errors"

var (
	// ErrProfileNotFound indica que el usuario todavía no tiene perfil.
	// No es una condición de error para lecturas: el caller recibe un
	// perfil neutro por defecto.
	ErrProfileNotFound = errors.New("personality profile not found")

	// ErrEvidenceUnavailable indica que el extractor de evidencia falló;
	// el perfil queda intacto.
	ErrEvidenceUnavailable = errors.New("personality evidence unavailable")

	// ErrEmbeddingFailed indica que no se pudo generar un embedding
	// válido (fallo del proveedor o dimensionalidad incorrecta). La
	// operación de store no escribe nada en ese caso.
	ErrEmbeddingFailed = errors.New("embedding generation failed")

	// ErrIndexUnavailable distingue "el índice vectorial no responde"
	// de "el usuario no tiene memorias" (lista vacía).
	ErrIndexUnavailable = errors.New("vector index unavailable")
)
