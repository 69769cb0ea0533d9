package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/Apurer/go-gin-pos-server/internal/domains/directory/adapters/credentials"
	"github.com/Apurer/go-gin-pos-server/internal/domains/directory/domain"
	"github.com/Apurer/go-gin-pos-server/internal/shared/fault"
)

type staticDirectory map[string]domain.Employee

func (d staticDirectory) FindByUsername(username string) (domain.Employee, bool) {
	e, ok := d[username]
	return e, ok
}

func TestSignIn(t *testing.T) {
	svc := NewService(staticDirectory{"sam": {ID: "e1", Username: "sam", Password: "pw"}})
	ctx := context.Background()

	employee, err := svc.SignIn(ctx, " sam ", "pw")
	require.NoError(t, err)
	require.Equal(t, "e1", employee.ID)

	_, err = svc.SignIn(ctx, "sam", "nope")
	require.ErrorIs(t, err, fault.ErrAuthFailure)

	_, err = svc.SignIn(ctx, "alex", "pw")
	require.ErrorIs(t, err, fault.ErrAuthFailure)

	_, err = svc.SignIn(ctx, "", "")
	require.ErrorIs(t, err, fault.ErrAuthFailure)
}

func TestSignIn_BcryptMode(t *testing.T) {
	verifier := credentials.BcryptVerifier{Cost: bcrypt.MinCost}
	hash, err := verifier.Prepare("pw")
	require.NoError(t, err)

	svc := NewService(staticDirectory{"sam": {ID: "e1", Username: "sam", Password: hash}}, WithVerifier(verifier))
	_, err = svc.SignIn(context.Background(), "sam", "pw")
	require.NoError(t, err)
}

func TestUnlockAdmin(t *testing.T) {
	ctx := context.Background()

	svc := NewService(staticDirectory{})
	require.NoError(t, svc.UnlockAdmin(ctx, "1234"))
	require.ErrorIs(t, svc.UnlockAdmin(ctx, "0000"), fault.ErrAuthFailure)

	custom := NewService(staticDirectory{}, WithAdminPIN("9876"))
	require.NoError(t, custom.UnlockAdmin(ctx, "9876"))
	require.ErrorIs(t, custom.UnlockAdmin(ctx, "1234"), ErrInvalidPIN)
}
