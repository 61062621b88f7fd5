package dal

import (
	"context"
	"testing"

	"github.com/orgadmin/pkg/config"
	"github.com/orgadmin/pkg/database"
	"github.com/orgadmin/pkg/errors"
	"github.com/orgadmin/pkg/ssql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type widget struct {
	Model
	Name  string `gorm:"size:64"`
	Sort  int
	Ready bool
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Open(&config.DatabaseConfig{Driver: "sqlite", LogLevel: "silent"})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&widget{}))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func seedWidgets(t *testing.T, repo *BaseRepository[widget]) {
	t.Helper()
	ctx := context.Background()
	for i, name := range []string{"alpha", "beta", "gamma", "delta", "alphabet"} {
		require.NoError(t, repo.Create(ctx, &widget{Name: name, Sort: 5 - i, Ready: i%2 == 0}))
	}
}

func TestBaseRepositoryCRUD(t *testing.T) {
	ctx := context.Background()
	repo := NewBaseRepositoryWithDB[widget](newTestDB(t))

	w := &widget{Name: "one"}
	require.NoError(t, repo.Create(ctx, w))
	require.NotZero(t, w.ID)

	w.Name = "uno"
	require.NoError(t, repo.Save(ctx, w))

	got, err := repo.FindByID(ctx, w.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "uno", got.Name)

	missing, err := repo.FindByID(ctx, 9999)
	require.NoError(t, err)
	assert.Nil(t, missing)

	n, err := repo.DeleteByIDs(ctx, []int64{w.ID, 9999})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = repo.DeleteByIDs(ctx, nil)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestBaseRepositoryExpressions(t *testing.T) {
	ctx := context.Background()
	repo := NewBaseRepositoryWithDB[widget](newTestDB(t))
	seedWidgets(t, repo)

	like := ssql.Where().Like("name", "alpha").Build()

	all, err := repo.FindAll(ctx, like, WithOrder("sort"))
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "alphabet", all[0].Name)

	count, err := repo.Count(ctx, ssql.Where().Eq("ready", true).Build())
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)

	exists, err := repo.Exists(ctx, ssql.Where().Eq("name", "zeta").Build())
	require.NoError(t, err)
	assert.False(t, exists)

	one, err := repo.FindOne(ctx, ssql.Where().Eq("name", "beta").Build())
	require.NoError(t, err)
	require.NotNil(t, one)
	assert.Equal(t, 4, one.Sort)

	everything, err := repo.FindAll(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, everything, 5)
}

func TestBaseRepositoryFindPage(t *testing.T) {
	ctx := context.Background()
	repo := NewBaseRepositoryWithDB[widget](newTestDB(t))
	seedWidgets(t, repo)

	page, err := repo.FindPage(ctx, nil, &Pagination{Page: 2, PageSize: 2, Sort: "sort"})
	require.NoError(t, err)
	assert.Equal(t, int64(5), page.Total)
	assert.Equal(t, 3, page.TotalPages)
	require.Len(t, page.Items, 2)
	assert.Equal(t, 3, page.Items[0].Sort)
	assert.Equal(t, 4, page.Items[1].Sort)

	_, err = repo.FindPage(ctx, nil, &Pagination{Sort: "name;drop"})
	assert.True(t, errors.Is(err, errors.ErrBadRequest))
}

func TestPagination(t *testing.T) {
	p := &Pagination{Page: 0, PageSize: 10000}
	p.Normalize()
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, MaxPageSize, p.PageSize)
	assert.Equal(t, 0, p.Offset())

	p = NewPagination(3, 0)
	assert.Equal(t, DefaultPageSize, p.PageSize)
	assert.Equal(t, 40, p.Offset())

	result := NewPagedResult[widget](nil, 41, p)
	assert.Equal(t, 3, result.TotalPages)
	assert.NotNil(t, result.Items)
}

func TestParseSort(t *testing.T) {
	fields, err := ParseSort("-sort, name,+id")
	require.NoError(t, err)
	assert.Equal(t, []SortField{{"sort", true}, {"name", false}, {"id", false}}, fields)

	for _, bad := range []string{"1abc", "name desc", "-", "a.b"} {
		_, err := ParseSort(bad)
		assert.Error(t, err, bad)
	}
}

func TestCollection(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	seedWidgets(t, NewBaseRepositoryWithDB[widget](db))

	col := NewCollection[widget](db).
		WithSortable("id", "sort", "name").
		WithFilterable("name", "ready").
		WithDefaultSort("sort")

	list, err := col.GetList(ctx, &ListParams{Filter: "ready = true"}, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(3), list.Total)
	assert.Equal(t, "alphabet", list.Items[0].Name)

	list, err = col.GetList(ctx, &ListParams{Filter: "ready = true"}, ssql.Where().Like("name", "alpha").Build())
	require.NoError(t, err)
	assert.Equal(t, int64(2), list.Total)

	full, err := col.GetFullList(ctx, &ListParams{Sort: "-name"}, nil)
	require.NoError(t, err)
	require.Len(t, full, 5)
	assert.Equal(t, "gamma", full[0].Name)

	n, err := col.Count(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, int64(5), n)

	_, err = col.GetList(ctx, &ListParams{Filter: "sort > 1"}, nil)
	assert.True(t, errors.Is(err, errors.ErrBadRequest))

	_, err = col.GetList(ctx, &ListParams{Sort: "ready"}, nil)
	assert.True(t, errors.Is(err, errors.ErrBadRequest))

	_, err = col.GetList(ctx, &ListParams{Filter: "name ?= widget.name()"}, nil)
	assert.True(t, errors.Is(err, errors.ErrBadRequest))

	_, err = col.GetList(ctx, &ListParams{Filter: "name = "}, nil)
	assert.True(t, errors.Is(err, errors.ErrBadRequest))
}

func TestParseIDs(t *testing.T) {
	ids, err := ParseIDs("3, 1,,3,2")
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 1, 2}, ids)

	for _, bad := range []string{"", " , ", "1,x", "0", "-4"} {
		_, err := ParseIDs(bad)
		assert.Error(t, err, bad)
	}

	id, err := ParseID(" 42 ")
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
}
