package handler

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/valyala/fasthttp"

	"seller-dashboard/internal/domain"
	"seller-dashboard/internal/middleware"
	"seller-dashboard/internal/service/notification"
)

// keepAliveInterval keeps idle SSE connections open through proxies.
const keepAliveInterval = 25 * time.Second

type NotificationHandler struct {
	notifService notification.Service

	// KeepAlive is the interval between SSE comments on an idle stream. A
	// failed keep-alive write is also how a closed client is noticed.
	KeepAlive time.Duration
}

func NewNotificationHandler(notifService notification.Service) *NotificationHandler {
	return &NotificationHandler{notifService: notifService, KeepAlive: keepAliveInterval}
}

// Mount registers the notification routes on router. Static paths go first
// so they are not captured by /:id.
func (h *NotificationHandler) Mount(router fiber.Router) {
	router.Get("/", h.List)
	router.Get("/count", h.Count)
	router.Get("/stream", h.Stream)
	router.Get("/:id", h.Get)
	router.Post("/", h.Create)
	router.Post("/read", h.MarkManyAsRead)
	router.Post("/read-all", h.MarkAllAsRead)
	router.Post("/delete", h.DeleteMany)
	router.Patch("/:id/read", h.MarkAsRead)
	router.Delete("/", h.DeleteAll)
	router.Delete("/:id", h.Delete)
}

func (h *NotificationHandler) List(c *fiber.Ctx) error {
	notifType, err := parseType(c)
	if err != nil {
		return err
	}

	opts := domain.ListOptions{
		Limit:      c.QueryInt("limit", domain.DefaultListLimit),
		Offset:     c.QueryInt("offset", 0),
		Type:       notifType,
		UnreadOnly: c.QueryBool("unread_only", false),
	}

	notifications, err := h.notifService.List(c.Context(), middleware.GetAccount(c), opts)
	if err != nil {
		return err
	}

	return respond(c, fiber.StatusOK, notifications)
}

func (h *NotificationHandler) Count(c *fiber.Ctx) error {
	notifType, err := parseType(c)
	if err != nil {
		return err
	}

	opts := domain.CountOptions{
		UnreadOnly: c.QueryBool("unread_only", false),
		Type:       notifType,
	}

	count, err := h.notifService.Count(c.Context(), middleware.GetAccount(c), opts)
	if err != nil {
		return err
	}

	return respond(c, fiber.StatusOK, fiber.Map{"count": count})
}

func (h *NotificationHandler) Get(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	notif, err := h.notifService.GetByID(c.Context(), middleware.GetAccount(c), id)
	if err != nil {
		return err
	}

	return respond(c, fiber.StatusOK, notif)
}

func (h *NotificationHandler) Create(c *fiber.Ctx) error {
	var input domain.CreateNotificationInput
	if err := c.BodyParser(&input); err != nil {
		return middleware.BadRequest("Invalid request body")
	}

	notif, err := h.notifService.Create(c.Context(), middleware.GetAccount(c), input)
	if err != nil {
		return err
	}

	return respond(c, fiber.StatusCreated, notif)
}

func (h *NotificationHandler) MarkAsRead(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	notif, err := h.notifService.MarkRead(c.Context(), middleware.GetAccount(c), id)
	if err != nil {
		return err
	}

	return respond(c, fiber.StatusOK, notif)
}

func (h *NotificationHandler) MarkManyAsRead(c *fiber.Ctx) error {
	var input domain.IDsInput
	if err := c.BodyParser(&input); err != nil {
		return middleware.BadRequest("Invalid request body")
	}

	notifications, err := h.notifService.MarkManyRead(c.Context(), middleware.GetAccount(c), input.IDs)
	if err != nil {
		return err
	}

	return respond(c, fiber.StatusOK, notifications)
}

func (h *NotificationHandler) MarkAllAsRead(c *fiber.Ctx) error {
	updated, err := h.notifService.MarkAllRead(c.Context(), middleware.GetAccount(c))
	if err != nil {
		return err
	}

	return respond(c, fiber.StatusOK, fiber.Map{"updated": updated})
}

func (h *NotificationHandler) Delete(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	if err := h.notifService.Delete(c.Context(), middleware.GetAccount(c), id); err != nil {
		return err
	}

	return respond(c, fiber.StatusOK, fiber.Map{"id": id})
}

func (h *NotificationHandler) DeleteMany(c *fiber.Ctx) error {
	var input domain.IDsInput
	if err := c.BodyParser(&input); err != nil {
		return middleware.BadRequest("Invalid request body")
	}

	deleted, err := h.notifService.DeleteMany(c.Context(), middleware.GetAccount(c), input.IDs)
	if err != nil {
		return err
	}

	return respond(c, fiber.StatusOK, fiber.Map{"deleted": deleted})
}

func (h *NotificationHandler) DeleteAll(c *fiber.Ctx) error {
	deleted, err := h.notifService.DeleteAll(c.Context(), middleware.GetAccount(c))
	if err != nil {
		return err
	}

	return respond(c, fiber.StatusOK, fiber.Map{"deleted": deleted})
}

// Stream sends the account's change feed as Server-Sent Events. The
// subscription outlives the fiber context, so it is closed by the writer
// once the client goes away.
func (h *NotificationHandler) Stream(c *fiber.Ctx) error {
	account := middleware.GetAccount(c)
	sub, err := h.notifService.Subscribe(context.Background(), account)
	if err != nil {
		return err
	}

	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")
	c.Set("X-Accel-Buffering", "no")

	interval := h.KeepAlive
	if interval <= 0 {
		interval = keepAliveInterval
	}

	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		defer sub.Close()

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		fmt.Fprintf(w, ": connected %s\n\n", account.ID)
		if err := w.Flush(); err != nil {
			return
		}

		for {
			select {
			case ev, ok := <-sub.Events():
				if !ok {
					return
				}
				if err := writeEvent(w, ev); err != nil {
					return
				}
			case <-ticker.C:
				fmt.Fprint(w, ": keep-alive\n\n")
				if err := w.Flush(); err != nil {
					return
				}
			}
		}
	}))

	return nil
}

func writeEvent(w *bufio.Writer, ev domain.ChangeEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		log.Printf("Failed to encode change event %s: %v", ev.ID, err)
		return nil
	}
	fmt.Fprintf(w, "event: change\ndata: %s\n\n", payload)
	return w.Flush()
}

// DataResponse is the success half of the {data, error} envelope.
type DataResponse struct {
	Data  any `json:"data"`
	Error any `json:"error"`
}

func respond(c *fiber.Ctx, status int, data any) error {
	return c.Status(status).JSON(DataResponse{Data: data})
}

func parseID(c *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return uuid.Nil, middleware.BadRequest("Invalid notification ID")
	}
	return id, nil
}

func parseType(c *fiber.Ctx) (*domain.NotificationType, error) {
	raw := c.Query("type")
	if raw == "" {
		return nil, nil
	}
	notifType := domain.NotificationType(raw)
	if !notifType.IsValid() {
		return nil, middleware.BadRequest("Invalid notification type")
	}
	return &notifType, nil
}
