package department

import (
	"testing"

	"github.com/orgadmin/pkg/errors"
	"github.com/orgadmin/pkg/ssql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOnSearchEmpty(t *testing.T) {
	expr, err := OnSearch(nil)
	require.NoError(t, err)
	assert.Nil(t, expr)

	expr, err = OnSearch(map[string]any{KeyCode: "", KeyName: " ", KeyParent: nil, "unknown": "x"})
	require.NoError(t, err)
	assert.Nil(t, expr)
}

func TestOnSearchSQL(t *testing.T) {
	expr, err := OnSearch(map[string]any{
		KeyCode:         "RD",
		KeyID:           "12",
		KeyParent:       "总部",
		KeyAvailable:    true,
		KeyOrganization: "集团",
	})
	require.NoError(t, err)

	sql, args := expr.ToSQL(ssql.NewMySQLDialect())
	assert.Equal(t, "(`code` LIKE ? AND `id` = ? AND "+
		"`parent_id` IN (SELECT `id` FROM `sys_department` WHERE (`name` LIKE ? AND `deleted_at` IS NULL)) AND "+
		"`available` = ? AND "+
		"`organization_id` IN (SELECT `id` FROM `sys_organization` WHERE (`name` LIKE ? AND `deleted_at` IS NULL)))", sql)
	assert.Equal(t, []interface{}{"%RD%", int64(12), "%总部%", true, "%集团%"}, args)
}

func TestOnSearchCoercion(t *testing.T) {
	tests := []struct {
		name    string
		content map[string]any
		want    string
		wantErr bool
	}{
		{"id from json number", map[string]any{KeyID: float64(7)}, "id = 7", false},
		{"id padded", map[string]any{KeyID: " 8 "}, "id = 8", false},
		{"id leading zero is decimal", map[string]any{KeyID: "010"}, "id = 10", false},
		{"id hex rejected", map[string]any{KeyID: "0x1F"}, "", true},
		{"id fraction rejected", map[string]any{KeyID: "1.5"}, "", true},
		{"id not a number", map[string]any{KeyID: "seven"}, "", true},
		{"available string", map[string]any{KeyAvailable: "false"}, "available = false", false},
		{"available number", map[string]any{KeyAvailable: 1}, "available = true", false},
		{"available garbage", map[string]any{KeyAvailable: "yes please"}, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expr, err := OnSearch(tt.content)
			if tt.wantErr {
				assert.True(t, errors.Is(err, errors.ErrValidation))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, expr.String())
		})
	}
}

func TestOnSearchLikeKeepsPercent(t *testing.T) {
	expr, err := OnSearch(map[string]any{KeyName: "50%"})
	require.NoError(t, err)

	sql, args := expr.ToSQL(ssql.NewMySQLDialect())
	assert.Equal(t, "`name` LIKE ?", sql)
	assert.Equal(t, []interface{}{"%50%%"}, args)
}

func TestOnRelationalSearch(t *testing.T) {
	tests := []struct {
		content map[string]any
		want    string
	}{
		{nil, "parent_id ?null"},
		{map[string]any{KeyParentID: 0}, "parent_id ?null"},
		{map[string]any{KeyParentID: "0"}, "parent_id ?null"},
		{map[string]any{KeyParentID: "5"}, "parent_id = 5"},
		{map[string]any{KeyParentID: float64(9)}, "parent_id = 9"},
		{map[string]any{KeyParentID: "010"}, "parent_id = 10"},
		{map[string]any{KeyParentID: "abc"}, "parent_id ?null"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, OnRelationalSearch(tt.content).String())
	}
}
