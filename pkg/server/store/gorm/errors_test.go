package gorm

import (
	"errors"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"github.com/wenhsiu/aiot-in-go/pkg/server/store"
)

func TestTranslateError(t *testing.T) {
	cases := []struct {
		name string
		in   error
		want error
	}{
		{"nil passes through", nil, nil},
		{"record not found", gorm.ErrRecordNotFound, store.ErrNotFound},
		{"unique violation", &pq.Error{Code: "23505"}, store.ErrDuplicate},
		{"foreign key violation", &pq.Error{Code: "23503"}, store.ErrNotFound},
		{
			"unique violation by message",
			errors.New(`ERROR: duplicate key value violates unique constraint "users_username_key" (SQLSTATE 23505)`),
			store.ErrDuplicate,
		},
		{
			"foreign key violation by message",
			errors.New(`ERROR: insert or update on table "user_roles" violates foreign key constraint "user_roles_role_id_fkey" (SQLSTATE 23503)`),
			store.ErrNotFound,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := translateError(tc.in)
			if tc.want == nil {
				assert.NoError(t, got)
				return
			}
			assert.ErrorIs(t, got, tc.want)
		})
	}

	t.Run("unrelated errors pass through", func(t *testing.T) {
		in := errors.New("connection refused")
		assert.Equal(t, in, translateError(in))
	})
}
