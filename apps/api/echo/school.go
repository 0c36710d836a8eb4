package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/darasa/backend/core/school"
	"github.com/darasa/backend/core/user"
)

type schoolApi struct {
	svc      *school.Service
	validate *validator.Validate
}

func registerSchoolAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *school.Service, validate *validator.Validate) {
	api := schoolApi{svc: svc, validate: validate}

	sg := g.Group("/school", jwt)

	cg := sg.Group("/courses")
	cg.GET("", api.queryCourses)
	cg.POST("", api.createCourse, permissionMiddleware(user.PermManageCourses))
	cg.PUT("/:id", api.updateCourse, permissionMiddleware(user.PermManageCourses))
	cg.DELETE("/:id", api.destroyCourse, permissionMiddleware(user.PermManageCourses))

	ag := sg.Group("/assignments")
	ag.GET("", api.queryAssignments)
	ag.POST("", api.createAssignment, permissionMiddleware(user.PermManageCourses))
	ag.PUT("/:id", api.updateAssignment, permissionMiddleware(user.PermManageCourses))
	ag.DELETE("/:id", api.destroyAssignment, permissionMiddleware(user.PermManageCourses))

	gg := sg.Group("/grades")
	gg.GET("", api.queryGrades)
	gg.POST("", api.createGrade, permissionMiddleware(user.PermManageGrades))

	tg := sg.Group("/attendance")
	tg.GET("", api.queryAttendance)
	tg.POST("", api.createAttendanceRecord, permissionMiddleware(user.PermManageAttendance))

	xg := sg.Group("/exams")
	xg.GET("", api.queryExams)
	xg.POST("", api.createExam, permissionMiddleware(user.PermManageCourses))

	eg := sg.Group("/events")
	eg.GET("", api.queryEvents)
	eg.POST("", api.createEvent, adminMiddleware())

	fg := sg.Group("/fees")
	fg.GET("", api.queryFees)
	fg.POST("", api.createFee, permissionMiddleware(user.PermManageFees))

	sg.GET("/students/:id/summary", api.studentSummary)
	sg.POST("/refresh", api.refresh, adminMiddleware())
}

// Courses

func (api *schoolApi) queryCourses(ctx echo.Context) error {
	filter := new(school.CourseFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []school.Course{})
	}

	courses, err := api.svc.Courses(*filter)
	if err != nil {
		return errors.Wrap(err, "querying courses")
	}
	return ctx.JSON(http.StatusOK, courses)
}

func (api *schoolApi) createCourse(ctx echo.Context) error {
	var data school.NewCourse
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewCourse")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	course, err := api.svc.CreateCourse(data)
	if err != nil {
		return errors.Wrap(err, "creating course")
	}
	return ctx.JSON(http.StatusCreated, course)
}

func (api *schoolApi) updateCourse(ctx echo.Context) error {
	var data school.NewCourse
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewCourse")
	}
	if _, err := api.svc.UpdateCourse(ctx.Param("id"), data); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusOK)
}

func (api *schoolApi) destroyCourse(ctx echo.Context) error {
	if err := api.svc.DeleteCourse(ctx.Param("id")); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

// Assignments

func (api *schoolApi) queryAssignments(ctx echo.Context) error {
	filter := new(school.AssignmentFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []school.Assignment{})
	}

	assignments, err := api.svc.Assignments(*filter)
	if err != nil {
		return errors.Wrap(err, "querying assignments")
	}
	return ctx.JSON(http.StatusOK, assignments)
}

func (api *schoolApi) createAssignment(ctx echo.Context) error {
	var data school.NewAssignment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewAssignment")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	assignment, err := api.svc.CreateAssignment(data)
	if err != nil {
		return errors.Wrap(err, "creating assignment")
	}
	return ctx.JSON(http.StatusCreated, assignment)
}

func (api *schoolApi) updateAssignment(ctx echo.Context) error {
	var data school.NewAssignment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewAssignment")
	}
	if _, err := api.svc.UpdateAssignment(ctx.Param("id"), data); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusOK)
}

func (api *schoolApi) destroyAssignment(ctx echo.Context) error {
	if err := api.svc.DeleteAssignment(ctx.Param("id")); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

// Grades

func (api *schoolApi) queryGrades(ctx echo.Context) error {
	filter := new(school.GradeFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []school.Grade{})
	}

	grades, err := api.svc.Grades(*filter)
	if err != nil {
		return errors.Wrap(err, "querying grades")
	}
	return ctx.JSON(http.StatusOK, grades)
}

func (api *schoolApi) createGrade(ctx echo.Context) error {
	var data school.NewGrade
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewGrade")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	grade, err := api.svc.CreateGrade(data)
	if err != nil {
		return errors.Wrap(err, "creating grade")
	}
	return ctx.JSON(http.StatusCreated, grade)
}

// Attendance

func (api *schoolApi) queryAttendance(ctx echo.Context) error {
	filter := new(school.AttendanceFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []school.AttendanceRecord{})
	}

	records, err := api.svc.Attendance(*filter)
	if err != nil {
		return errors.Wrap(err, "querying attendance")
	}
	return ctx.JSON(http.StatusOK, records)
}

func (api *schoolApi) createAttendanceRecord(ctx echo.Context) error {
	var data school.NewAttendanceRecord
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewAttendanceRecord")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	record, err := api.svc.CreateAttendanceRecord(data)
	if err != nil {
		return errors.Wrap(err, "creating attendance record")
	}
	return ctx.JSON(http.StatusCreated, record)
}

// Exams

func (api *schoolApi) queryExams(ctx echo.Context) error {
	filter := new(school.ExamFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []school.Exam{})
	}

	exams, err := api.svc.Exams(*filter)
	if err != nil {
		return errors.Wrap(err, "querying exams")
	}
	return ctx.JSON(http.StatusOK, exams)
}

func (api *schoolApi) createExam(ctx echo.Context) error {
	var data school.NewExam
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewExam")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	exam, err := api.svc.CreateExam(data)
	if err != nil {
		return errors.Wrap(err, "creating exam")
	}
	return ctx.JSON(http.StatusCreated, exam)
}

// Events

func (api *schoolApi) queryEvents(ctx echo.Context) error {
	filter := new(school.EventFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []school.Event{})
	}

	events, err := api.svc.Events(*filter)
	if err != nil {
		return errors.Wrap(err, "querying events")
	}
	return ctx.JSON(http.StatusOK, events)
}

func (api *schoolApi) createEvent(ctx echo.Context) error {
	var data school.NewEvent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewEvent")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	event, err := api.svc.CreateEvent(data)
	if err != nil {
		return errors.Wrap(err, "creating event")
	}
	return ctx.JSON(http.StatusCreated, event)
}

// Fees

func (api *schoolApi) queryFees(ctx echo.Context) error {
	filter := new(school.FeeFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []school.Fee{})
	}

	fees, err := api.svc.Fees(*filter)
	if err != nil {
		return errors.Wrap(err, "querying fees")
	}
	return ctx.JSON(http.StatusOK, fees)
}

func (api *schoolApi) createFee(ctx echo.Context) error {
	var data school.NewFee
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewFee")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	fee, err := api.svc.CreateFee(data)
	if err != nil {
		return errors.Wrap(err, "creating fee")
	}
	return ctx.JSON(http.StatusCreated, fee)
}

// Aggregates

func (api *schoolApi) studentSummary(ctx echo.Context) error {
	summary, err := api.svc.StudentSummary(ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "computing student summary")
	}
	return ctx.JSON(http.StatusOK, summary)
}

func (api *schoolApi) refresh(ctx echo.Context) error {
	if err := api.svc.Refresh(); err != nil {
		return errors.Wrap(err, "refreshing school data")
	}
	return ctx.NoContent(http.StatusNoContent)
}
