package echoapi

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/kazi/core"
	"github.com/trezcool/kazi/core/task"
)

type taskApi struct {
	svc *task.Service
}

func registerTaskAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *task.Service) {
	api := taskApi{svc: svc}

	tg := g.Group("/tasks", jwt)
	tg.GET("", api.query)
	tg.POST("", api.create, elevatedMiddleware())
	tg.GET("/:id", api.retrieve)
	tg.GET("/:id/status", api.status)
	tg.PUT("/:id", api.update, elevatedMiddleware())
	tg.DELETE("/:id", api.destroy, elevatedMiddleware())

	// completion endpoints
	ug := g.Group("/user-task", jwt)
	ug.GET("/:id", api.memberTasks)
	ug.POST("", api.markMemberFinished)
	ug.DELETE("", api.markMemberUnfinished)

	gg := g.Group("/group-task", jwt)
	gg.GET("/:id", api.groupTasks)
	gg.POST("", api.markGroupFinished)
	gg.DELETE("", api.markGroupUnfinished)
}

// Task handlers

func (api *taskApi) query(ctx echo.Context) error {
	tasks, err := api.svc.QueryAll(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying tasks")
	}
	if tasks == nil {
		tasks = []task.Task{}
	}
	return respond(ctx, http.StatusOK, "tasks", tasks)
}

func (api *taskApi) create(ctx echo.Context) error {
	var data task.NewTask
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewTask")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	t, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating task")
	}
	return respond(ctx, http.StatusOK, "task created", t)
}

func (api *taskApi) retrieve(ctx echo.Context) error {
	id, err := taskID(ctx)
	if err != nil {
		return err
	}
	t, err := api.svc.GetByID(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "finding task by ID")
	}
	return respond(ctx, http.StatusOK, "task", t)
}

// status resolves the finished/unfinished partition of a task; the payload
// shape depends on the task's assignment mode.
func (api *taskApi) status(ctx echo.Context) error {
	id, err := taskID(ctx)
	if err != nil {
		return err
	}
	st, err := api.svc.ResolveForTask(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "resolving task status")
	}
	return respond(ctx, http.StatusOK, "task status", st)
}

func (api *taskApi) update(ctx echo.Context) error {
	id, err := taskID(ctx)
	if err != nil {
		return err
	}

	var data task.UpdateTask
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateTask")
	}
	data.TaskID = id
	if err = data.Validate(); err != nil {
		return err
	}

	t, err := api.svc.Update(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "updating task")
	}
	return respond(ctx, http.StatusOK, "task updated", t)
}

func (api *taskApi) destroy(ctx echo.Context) error {
	id, err := taskID(ctx)
	if err != nil {
		return err
	}
	if _, err = api.svc.GetByID(ctx.Request().Context(), id); err != nil {
		return errors.Wrap(err, "finding task by ID")
	}
	if err = api.svc.Delete(ctx.Request().Context(), id); err != nil {
		return errors.Wrap(err, "deleting task")
	}
	return respond(ctx, http.StatusOK, "task deleted", nil)
}

// Member completion handlers

func (api *taskApi) memberTasks(ctx echo.Context) error {
	id, err := taskID(ctx)
	if err != nil {
		return err
	}
	mt, err := api.svc.ResolveForMember(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "resolving member tasks")
	}
	return respond(ctx, http.StatusOK, "member tasks", mt)
}

func (api *taskApi) markMemberFinished(ctx echo.Context) error {
	var data UserCompletionRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UserCompletionRequest")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	if err := api.svc.MarkMemberFinished(ctx.Request().Context(), data.UserID, data.TaskID); err != nil {
		return errors.Wrap(err, "marking member task finished")
	}
	return respond(ctx, http.StatusCreated, "task marked finished", nil)
}

func (api *taskApi) markMemberUnfinished(ctx echo.Context) error {
	var data UserCompletionRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UserCompletionRequest")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	if err := api.svc.MarkMemberUnfinished(ctx.Request().Context(), data.UserID, data.TaskID); err != nil {
		return errors.Wrap(err, "marking member task unfinished")
	}
	return respond(ctx, http.StatusOK, "task marked unfinished", nil)
}

// Group completion handlers

func (api *taskApi) groupTasks(ctx echo.Context) error {
	id, err := taskID(ctx)
	if err != nil {
		return err
	}
	gt, err := api.svc.ResolveForGroup(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "resolving group tasks")
	}
	return respond(ctx, http.StatusOK, "group tasks", gt)
}

func (api *taskApi) markGroupFinished(ctx echo.Context) error {
	var data GroupCompletionRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to GroupCompletionRequest")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	if err := api.svc.MarkGroupFinished(ctx.Request().Context(), data.GroupID, data.TaskID); err != nil {
		return errors.Wrap(err, "marking group task finished")
	}
	return respond(ctx, http.StatusCreated, "task marked finished", nil)
}

func (api *taskApi) markGroupUnfinished(ctx echo.Context) error {
	var data GroupCompletionRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to GroupCompletionRequest")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	if err := api.svc.MarkGroupUnfinished(ctx.Request().Context(), data.GroupID, data.TaskID); err != nil {
		return errors.Wrap(err, "marking group task unfinished")
	}
	return respond(ctx, http.StatusOK, "task marked unfinished", nil)
}

func taskID(ctx echo.Context) (int, error) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return 0, errHttpNotFound
	}
	return id, nil
}

type (
	UserCompletionRequest struct {
		UserID int `json:"user_id" validate:"required"`
		TaskID int `json:"task_id" validate:"required"`
	}

	GroupCompletionRequest struct {
		GroupID int `json:"group_id" validate:"required"`
		TaskID  int `json:"task_id" validate:"required"`
	}
)

func (r *UserCompletionRequest) Validate() error  { return core.Validate.Struct(r) }
func (r *GroupCompletionRequest) Validate() error { return core.Validate.Struct(r) }
