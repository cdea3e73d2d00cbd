package api

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/bytedance/sonic"
	log "github.com/sirupsen/logrus"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"notes-api/domain"
	"notes-api/storage"
)

const (
	healthRoute   = "/"
	notesRoute    = "/notes"
	noteByIDRoute = "/notes/:id"
)

// Register wires up all API routes on the provided Echo instance.
func Register(e *echo.Echo, store NoteStore, logger *log.Logger) {
	e.JSONSerializer = sonicSerializer{}
	e.Use(decompressRequests())

	e.GET(healthRoute, health())
	e.GET(notesRoute, listNotes(store, logger))
	e.POST(notesRoute, createNote(store, logger))
	e.GET(noteByIDRoute, getNote(store, logger))
	e.PUT(noteByIDRoute, updateNote(store, logger))
	e.DELETE(noteByIDRoute, deleteNote(store, logger))
}

func health() echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSON(http.StatusOK, healthResponse{Message: "Healthy"})
	}
}

func listNotes(store NoteStore, logger *log.Logger) echo.HandlerFunc {
	return func(c echo.Context) (err error) {
		metrics, spanCtx := newNoteRequestMetrics(c.Request().Context(), logger, notesRoute, "list")
		c.SetRequest(c.Request().WithContext(spanCtx))
		defer func() {
			metrics.Log(c.Response().Status, err)
		}()

		storeStart := time.Now()
		notes := store.List()
		metrics.ObserveStore(time.Since(storeStart))
		metrics.SetNotesReturned(len(notes))

		encodeStart := time.Now()
		err = c.JSON(http.StatusOK, notes)
		metrics.ObserveEncode(time.Since(encodeStart))
		if err != nil {
			metrics.SetErrorStage("encode_response")
		}
		return err
	}
}

func createNote(store NoteStore, logger *log.Logger) echo.HandlerFunc {
	return func(c echo.Context) (err error) {
		metrics, spanCtx := newNoteRequestMetrics(c.Request().Context(), logger, notesRoute, "create")
		c.SetRequest(c.Request().WithContext(spanCtx))
		defer func() {
			metrics.Log(c.Response().Status, err)
		}()

		decodeStart := time.Now()
		var payload *domain.NoteCreate
		decodeErr := decodeNoteBody(c.Request().Body, &payload)
		metrics.ObserveDecode(time.Since(decodeStart))
		if decodeErr != nil {
			metrics.SetErrorStage("decode_body")
			err = invalidBody(c, "request body is not valid JSON", "json_invalid")
			return err
		}
		// A bare null decodes without error, leaving the payload nil.
		if payload == nil {
			metrics.SetErrorStage("decode_body")
			err = invalidBody(c, "request body must be a JSON object", "object_type")
			return err
		}

		note, buildErr := payload.NewNote(uuid.New())
		if buildErr != nil {
			metrics.SetErrorStage("validate")
			err = validationFailed(c, buildErr)
			return err
		}

		storeStart := time.Now()
		insertErr := store.Insert(note)
		metrics.ObserveStore(time.Since(storeStart))
		if insertErr != nil {
			metrics.SetErrorStage("store")
			c.Logger().Error(insertErr)
			err = c.String(http.StatusInternalServerError, insertErr.Error())
			return err
		}

		encodeStart := time.Now()
		err = c.JSON(http.StatusCreated, note)
		metrics.ObserveEncode(time.Since(encodeStart))
		if err != nil {
			metrics.SetErrorStage("encode_response")
		}
		return err
	}
}

func getNote(store NoteStore, logger *log.Logger) echo.HandlerFunc {
	return func(c echo.Context) (err error) {
		metrics, spanCtx := newNoteRequestMetrics(c.Request().Context(), logger, noteByIDRoute, "get")
		c.SetRequest(c.Request().WithContext(spanCtx))
		defer func() {
			metrics.Log(c.Response().Status, err)
		}()

		id, parseErr := uuid.Parse(c.Param("id"))
		if parseErr != nil {
			metrics.SetErrorStage("parse_id")
			err = noteNotFound(c)
			return err
		}

		storeStart := time.Now()
		note, ok := store.Get(id)
		metrics.ObserveStore(time.Since(storeStart))
		if !ok {
			metrics.SetErrorStage("not_found")
			err = noteNotFound(c)
			return err
		}

		encodeStart := time.Now()
		err = c.JSON(http.StatusOK, note)
		metrics.ObserveEncode(time.Since(encodeStart))
		if err != nil {
			metrics.SetErrorStage("encode_response")
		}
		return err
	}
}

func updateNote(store NoteStore, logger *log.Logger) echo.HandlerFunc {
	return func(c echo.Context) (err error) {
		metrics, spanCtx := newNoteRequestMetrics(c.Request().Context(), logger, noteByIDRoute, "update")
		c.SetRequest(c.Request().WithContext(spanCtx))
		defer func() {
			metrics.Log(c.Response().Status, err)
		}()

		id, parseErr := uuid.Parse(c.Param("id"))
		if parseErr != nil {
			metrics.SetErrorStage("parse_id")
			err = noteNotFound(c)
			return err
		}

		decodeStart := time.Now()
		var payload *domain.NoteUpdate
		decodeErr := decodeNoteBody(c.Request().Body, &payload)
		metrics.ObserveDecode(time.Since(decodeStart))
		if decodeErr != nil {
			metrics.SetErrorStage("decode_body")
			err = invalidBody(c, "request body is not valid JSON", "json_invalid")
			return err
		}
		if payload == nil {
			metrics.SetErrorStage("decode_body")
			err = invalidBody(c, "request body must be a JSON object", "object_type")
			return err
		}
		if validateErr := payload.Validate(); validateErr != nil {
			metrics.SetErrorStage("validate")
			err = validationFailed(c, validateErr)
			return err
		}

		storeStart := time.Now()
		base, ok := store.Get(id)
		if !ok {
			metrics.ObserveStore(time.Since(storeStart))
			metrics.SetErrorStage("not_found")
			err = noteNotFound(c)
			return err
		}
		merged := payload.Apply(base)
		replaceErr := store.Replace(id, merged)
		metrics.ObserveStore(time.Since(storeStart))
		if replaceErr != nil {
			// The note can vanish between Get and Replace when a delete
			// wins the race; that is still a plain 404 for the caller.
			if errors.Is(replaceErr, storage.ErrNotFound) {
				metrics.SetErrorStage("not_found")
				err = noteNotFound(c)
				return err
			}
			metrics.SetErrorStage("store")
			c.Logger().Error(replaceErr)
			err = c.String(http.StatusInternalServerError, replaceErr.Error())
			return err
		}

		encodeStart := time.Now()
		err = c.JSON(http.StatusOK, merged)
		metrics.ObserveEncode(time.Since(encodeStart))
		if err != nil {
			metrics.SetErrorStage("encode_response")
		}
		return err
	}
}

func deleteNote(store NoteStore, logger *log.Logger) echo.HandlerFunc {
	return func(c echo.Context) (err error) {
		metrics, spanCtx := newNoteRequestMetrics(c.Request().Context(), logger, noteByIDRoute, "delete")
		c.SetRequest(c.Request().WithContext(spanCtx))
		defer func() {
			metrics.Log(c.Response().Status, err)
		}()

		id, parseErr := uuid.Parse(c.Param("id"))
		if parseErr != nil {
			metrics.SetErrorStage("parse_id")
			err = noteNotFound(c)
			return err
		}

		storeStart := time.Now()
		removed := store.Remove(id)
		metrics.ObserveStore(time.Since(storeStart))
		if !removed {
			metrics.SetErrorStage("not_found")
			err = noteNotFound(c)
			return err
		}

		err = c.NoContent(http.StatusNoContent)
		return err
	}
}

// decodeNoteBody decodes a JSON request body with the shared size cap.
// Unknown fields pass through untouched so clients can send extra metadata.
func decodeNoteBody(r io.Reader, dst any) error {
	lr := io.LimitReader(r, noteBodyMaxSize)
	return sonic.ConfigStd.NewDecoder(lr).Decode(dst)
}
