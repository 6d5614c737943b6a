package echoapi

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/kazi/core/group"
)

type groupApi struct {
	svc *group.Service
}

func registerGroupAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *group.Service) {
	api := groupApi{svc: svc}

	gg := g.Group("/groups", jwt)
	gg.GET("", api.query)
	gg.POST("", api.create, elevatedMiddleware())

	dg := gg.Group("/:id")
	dg.GET("", api.retrieve)
	dg.DELETE("", api.destroy, elevatedMiddleware())
	dg.POST("/members", api.addMembers, elevatedMiddleware())
	dg.DELETE("/members", api.removeMember, elevatedMiddleware())
}

func (api *groupApi) query(ctx echo.Context) error {
	groups, err := api.svc.QueryAll(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying groups")
	}
	return respond(ctx, http.StatusOK, "groups", groups)
}

func (api *groupApi) create(ctx echo.Context) error {
	var data group.NewGroup
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewGroup")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	grp, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating group")
	}
	return respond(ctx, http.StatusOK, "group created", grp)
}

func (api *groupApi) retrieve(ctx echo.Context) error {
	id, err := groupID(ctx)
	if err != nil {
		return err
	}
	grp, err := api.svc.GetByID(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "finding group by ID")
	}
	return respond(ctx, http.StatusOK, "group", grp)
}

func (api *groupApi) destroy(ctx echo.Context) error {
	id, err := groupID(ctx)
	if err != nil {
		return err
	}
	if _, err = api.svc.GetByID(ctx.Request().Context(), id); err != nil {
		return errors.Wrap(err, "finding group by ID")
	}
	if err = api.svc.Delete(ctx.Request().Context(), id); err != nil {
		return errors.Wrap(err, "deleting group")
	}
	return respond(ctx, http.StatusOK, "group deleted", nil)
}

func (api *groupApi) addMembers(ctx echo.Context) error {
	id, err := groupID(ctx)
	if err != nil {
		return err
	}

	var data group.AddMembers
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to AddMembers")
	}
	if err = data.Validate(); err != nil {
		return err
	}

	if err = api.svc.AddMembers(ctx.Request().Context(), id, data); err != nil {
		return errors.Wrap(err, "adding group members")
	}
	grp, err := api.svc.GetByID(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "finding group by ID")
	}
	return respond(ctx, http.StatusOK, "members added", grp)
}

func (api *groupApi) removeMember(ctx echo.Context) error {
	id, err := groupID(ctx)
	if err != nil {
		return err
	}

	var data group.RemoveMember
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to RemoveMember")
	}
	if err = data.Validate(); err != nil {
		return err
	}

	if err = api.svc.RemoveMember(ctx.Request().Context(), id, data.UserID); err != nil {
		return errors.Wrap(err, "removing group member")
	}
	return respond(ctx, http.StatusOK, "member removed", nil)
}

func groupID(ctx echo.Context) (int, error) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return 0, errHttpNotFound
	}
	return id, nil
}
