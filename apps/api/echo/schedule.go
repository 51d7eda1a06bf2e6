package echoapi

import (
	"bytes"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/ratiba/core"
	"github.com/trezcool/ratiba/core/schedule"
)

type scheduleApi struct {
	svc      schedule.Service
	validate *validator.Validate
}

func registerScheduleAPI(g *echo.Group, svc schedule.Service, validate *validator.Validate) {
	api := scheduleApi{
		svc:      svc,
		validate: validate,
	}

	g.GET("/roster", api.roster)

	tg := g.Group("/timetables")
	tg.GET("/:section", api.retrieve)
	tg.POST("/:section", api.generate)

	ag := g.Group("/availability")
	ag.GET("/venue", api.venueAvailability)
	ag.GET("/teacher", api.teacherAvailability)
	ag.GET("/section", api.sectionAvailability)

	eg := g.Group("/entries")
	eg.GET("", api.query)
	eg.POST("", api.create)

	g.GET("/export", api.export)
}

// Handlers

func (api *scheduleApi) roster(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, api.svc.Roster())
}

func (api *scheduleApi) generate(ctx echo.Context) error {
	data := schedule.GenerateRequest{Section: ctx.Param("section")}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	timetable, err := api.svc.Generate(ctx.Request().Context(), data.Section)
	if err != nil {
		return errors.Wrap(err, "generating timetable")
	}
	return ctx.JSON(http.StatusCreated, TimetableResponse{Section: data.Section, Timetable: timetable})
}

func (api *scheduleApi) retrieve(ctx echo.Context) error {
	section := core.CleanString(ctx.Param("section"))
	timetable, err := api.svc.Timetable(ctx.Request().Context(), section)
	if err != nil {
		return errors.Wrap(err, "retrieving timetable")
	}
	return ctx.JSON(http.StatusOK, TimetableResponse{Section: section, Timetable: timetable})
}

func (api *scheduleApi) venueAvailability(ctx echo.Context) error {
	var query schedule.VenueQuery
	if err := ctx.Bind(&query); err != nil {
		return errors.Wrap(err, "binding to VenueQuery")
	}
	if err := query.Validate(api.validate); err != nil {
		return err
	}

	available, err := api.svc.CheckVenueAvailability(ctx.Request().Context(), query.Venue, query.Day, query.TimeSlot)
	if err != nil {
		return errors.Wrap(err, "checking venue availability")
	}
	return ctx.JSON(http.StatusOK, AvailabilityResponse{Available: available})
}

func (api *scheduleApi) teacherAvailability(ctx echo.Context) error {
	var query schedule.TeacherQuery
	if err := ctx.Bind(&query); err != nil {
		return errors.Wrap(err, "binding to TeacherQuery")
	}
	if err := query.Validate(api.validate); err != nil {
		return err
	}

	available, err := api.svc.CheckTeacherAvailability(ctx.Request().Context(), query.Teacher, query.Day, query.TimeSlot)
	if err != nil {
		return errors.Wrap(err, "checking teacher availability")
	}
	return ctx.JSON(http.StatusOK, AvailabilityResponse{Available: available})
}

func (api *scheduleApi) sectionAvailability(ctx echo.Context) error {
	var query schedule.SectionQuery
	if err := ctx.Bind(&query); err != nil {
		return errors.Wrap(err, "binding to SectionQuery")
	}
	if err := query.Validate(api.validate); err != nil {
		return err
	}

	available, err := api.svc.CheckSectionAvailability(ctx.Request().Context(), query.Section, query.Day, query.TimeSlot)
	if err != nil {
		return errors.Wrap(err, "checking section availability")
	}
	return ctx.JSON(http.StatusOK, AvailabilityResponse{Available: available})
}

func (api *scheduleApi) query(ctx echo.Context) error {
	entries, err := api.svc.Entries(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying entries")
	}
	var filter EntryFilter
	filter.Bind(ctx)
	return ctx.JSON(http.StatusOK, filter.Apply(entries))
}

func (api *scheduleApi) create(ctx echo.Context) error {
	var data schedule.NewEntry
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewEntry")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	entry, err := api.svc.AddEntry(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "adding entry")
	}
	return ctx.JSON(http.StatusCreated, entry)
}

func (api *scheduleApi) export(ctx echo.Context) error {
	var query schedule.ExportQuery
	if err := ctx.Bind(&query); err != nil {
		return errors.Wrap(err, "binding to ExportQuery")
	}
	if err := query.Validate(api.validate); err != nil {
		return err
	}
	format, _ := schedule.ParseFormat(query.Format)

	// buffer so that a failed export still gets a proper error response
	var buf bytes.Buffer
	if err := api.svc.Export(ctx.Request().Context(), &buf, string(format)); err != nil {
		return errors.Wrap(err, "exporting schedule")
	}
	ctx.Response().Header().Set(echo.HeaderContentDisposition, "attachment; filename="+format.Filename())
	return ctx.Blob(http.StatusOK, format.ContentType(), buf.Bytes())
}

type (
	TimetableResponse struct {
		Section   string             `json:"section"`
		Timetable schedule.Timetable `json:"timetable"`
	}

	AvailabilityResponse struct {
		Available bool `json:"available"`
	}
)
