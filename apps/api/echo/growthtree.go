package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/kijani/core/growthtree"
)

type growthTreeApi struct {
	deps ServerDeps
}

func registerGrowthTreeAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := growthTreeApi{deps: deps}

	sg := g.Group("/students/:id", jwt, studentAccessMiddleware(deps.UserSvc))
	sg.GET("/trees", api.queryTrees)
	sg.GET("/trees/:treeID/path", api.retrievePath)
	sg.GET("/trees/:treeID/next-activity", api.nextActivity)

	// assignments are an operator action
	sg.POST("/trees/:treeID/arrange", api.arrange, staffMiddleware())
}

// Handlers

func (api *growthTreeApi) queryTrees(ctx echo.Context) error {
	trees, err := api.deps.TreeSvc.QueryStudentTrees(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "querying student trees")
	}
	if trees == nil {
		trees = []growthtree.GrowthTree{}
	}
	return ctx.JSON(http.StatusOK, trees)
}

func (api *growthTreeApi) retrievePath(ctx echo.Context) error {
	view, err := api.deps.TreeSvc.LoadPathForTree(ctx.Request().Context(), ctx.Param("id"), ctx.Param("treeID"))
	if err != nil {
		return errors.Wrap(err, "loading learning path")
	}
	if view == nil {
		return errHttpNotFound
	}
	return ctx.JSON(http.StatusOK, view)
}

func (api *growthTreeApi) nextActivity(ctx echo.Context) error {
	next, err := api.deps.TreeSvc.GetNextActivity(ctx.Request().Context(), ctx.Param("id"), ctx.Param("treeID"))
	if err != nil {
		return errors.Wrap(err, "getting next activity")
	}
	if next == nil {
		return ctx.NoContent(http.StatusNoContent)
	}
	return ctx.JSON(http.StatusOK, next)
}

// arrange commits the next activity for a student. When distinct work is
// already in progress it answers 409 with the records that would be closed
// out; the client repeats the call with an explicit "replace" decision.
func (api *growthTreeApi) arrange(ctx echo.Context) error {
	var data ArrangeRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ArrangeRequest")
	}

	out, err := api.deps.TreeSvc.ArrangeNextActivity(ctx.Request().Context(), ctx.Param("id"), ctx.Param("treeID"), data.Replace)
	if err != nil {
		return errors.Wrap(err, "arranging next activity")
	}

	switch out.State {
	case growthtree.OutcomeConfirmationRequired:
		return ctx.JSON(http.StatusConflict, out)
	case growthtree.OutcomeAssigned:
		return ctx.JSON(http.StatusCreated, out)
	}
	return ctx.JSON(http.StatusOK, out) // cancelled: nothing was written
}

// ArrangeRequest carries the operator's replacement decision; nil means the
// operator has not been asked yet.
type ArrangeRequest struct {
	Replace *bool `json:"replace"`
}
