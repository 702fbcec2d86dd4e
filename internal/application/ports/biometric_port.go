package ports

import (
	"context"
	"errors"

	"github.com/jhoicas/almacen-faceid/internal/domain/faceid"
)

// ErrBiometricUnavailable el reconocedor no respondió o respondió con error.
var ErrBiometricUnavailable = errors.New("servicio biométrico no disponible")

// BiometricService puerto de salida hacia el reconocedor facial externo.
// El núcleo nunca inspecciona imágenes: solo consume el veredicto.
// El contexto debe llevar un timeout para evitar bloqueos en llamadas externas.
type BiometricService interface {
	// Verify clasifica un cuadro y devuelve la etiqueta y la confianza (menor es mejor).
	// Un cuadro sin rostro reconocible devuelve Verdict{Matched: false} sin error.
	Verify(ctx context.Context, frame []byte) (faceid.Verdict, error)

	// Enroll registra las imágenes del rostro bajo la etiqueta indicada y reentrena el modelo.
	Enroll(ctx context.Context, faceLabel int, images [][]byte) error
}
