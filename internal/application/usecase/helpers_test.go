package usecase_test

import (
	"context"
	"encoding/base64"

	"github.com/stretchr/testify/mock"

	"github.com/jhoicas/almacen-faceid/internal/application/ports"
	"github.com/jhoicas/almacen-faceid/internal/domain/entity"
	"github.com/jhoicas/almacen-faceid/internal/domain/faceid"
)

var (
	adminActor    = entity.Actor{UserID: 1, Role: entity.RoleAdmin, SessionID: "sess-admin", Station: "10.0.0.9"}
	operatorActor = entity.Actor{UserID: 10, Role: entity.RoleOperator, SessionID: "sess-operator", Station: "10.0.0.5"}
	viewerActor   = entity.Actor{UserID: 20, Role: entity.RoleViewer, SessionID: "sess-viewer", Station: "10.0.0.7"}
)

var _ ports.BiometricService = (*mockBiometric)(nil)

type mockBiometric struct {
	mock.Mock
}

func (m *mockBiometric) Verify(ctx context.Context, frame []byte) (faceid.Verdict, error) {
	args := m.Called(ctx, frame)
	return args.Get(0).(faceid.Verdict), args.Error(1)
}

func (m *mockBiometric) Enroll(ctx context.Context, faceLabel int, images [][]byte) error {
	args := m.Called(ctx, faceLabel, images)
	return args.Error(0)
}

// frame imagen mínima en base64 (el núcleo no inspecciona el contenido).
func frame(content string) string {
	return base64.StdEncoding.EncodeToString([]byte(content))
}
