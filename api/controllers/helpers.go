package controllers

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/beatspace-ads/beatspace-backend/api/middleware"
	"github.com/beatspace-ads/beatspace-backend/api/validators"
	"github.com/beatspace-ads/beatspace-backend/pkg/enums"
	pkgerrors "github.com/beatspace-ads/beatspace-backend/pkg/errors"
	"github.com/beatspace-ads/beatspace-backend/pkg/pagination"
)

// tabPage carries one dashboard tab page plus its position in the filtered
// list, the same shape the mediation queue reports.
type tabPage[T any] struct {
	Rows       []T `json:"rows"`
	Page       int `json:"page"`
	TotalPages int `json:"total_pages"`
	TotalRows  int `json:"total_rows"`
}

// pageQuery reads the 1-based page parameter shared by the tab lists.
func pageQuery(r *http.Request) (int, error) {
	return validators.ParseQueryInt(r, "page", 1, 1, 10000)
}

// pageOf slices the requested page out of an already filtered tab list.
func pageOf[T any](rows []T, page int) tabPage[T] {
	return tabPage[T]{
		Rows:       pagination.Paginate(rows, page, pagination.DefaultPageSize),
		Page:       page,
		TotalPages: pagination.TotalPages(len(rows), pagination.DefaultPageSize),
		TotalRows:  len(rows),
	}
}

// requestActor resolves the authenticated identity seeded by the auth
// middleware.
func requestActor(ctx context.Context) (uuid.UUID, enums.UserRole, error) {
	raw := middleware.UserIDFromContext(ctx)
	if raw == "" {
		return uuid.Nil, "", pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials")
	}
	userID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, "", pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid user id")
	}
	role, err := enums.ParseUserRole(middleware.RoleFromContext(ctx))
	if err != nil {
		return uuid.Nil, "", pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid role")
	}
	return userID, role, nil
}
