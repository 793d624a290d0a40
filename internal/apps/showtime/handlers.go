package showtime

import (
	"errors"
	"strconv"
	"time"

	"github.com/fredseo/showhub-backend/internal/dto"
	"github.com/fredseo/showhub-backend/internal/principal"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Handler bundles the ticketing endpoints.
type Handler struct {
	concerts *ConcertService
	groups   *GroupService
	tickets  *TicketService
	payments *PaymentService
	profile  *ProfileService
}

func NewHandler(concerts *ConcertService, groups *GroupService, tickets *TicketService,
	payments *PaymentService, profile *ProfileService) *Handler {
	return &Handler{
		concerts: concerts,
		groups:   groups,
		tickets:  tickets,
		payments: payments,
		profile:  profile,
	}
}

// --- concerts ---

func (h *Handler) ListConcerts(c *fiber.Ctx) error {
	filter := ConcertFilter{
		Genre:  c.Query("genre"),
		Search: c.Query("search"),
	}
	filter.Page, _ = strconv.Atoi(c.Query("page"))
	filter.Limit, _ = strconv.Atoi(c.Query("limit"))

	if v := c.Query("date_from"); v != "" {
		t, err := parseDate(v)
		if err != nil {
			return badRequest(c, "Invalid date_from")
		}
		filter.DateFrom = t
	}
	if v := c.Query("date_to"); v != "" {
		t, err := parseDate(v)
		if err != nil {
			return badRequest(c, "Invalid date_to")
		}
		filter.DateTo = t
	}
	if v := c.Query("group_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return badRequest(c, "Invalid group_id")
		}
		filter.GroupID = id
	}

	page, err := h.concerts.List(filter)
	if err != nil {
		if errors.Is(err, ErrInvalidGenre) {
			return badRequest(c, err.Error())
		}
		return internalError(c)
	}
	return c.JSON(page)
}

func (h *Handler) UpcomingConcerts(c *fiber.Ctx) error {
	limit, _ := strconv.Atoi(c.Query("limit"))
	concerts, err := h.concerts.Upcoming(limit)
	if err != nil {
		return internalError(c)
	}
	return c.JSON(concerts)
}

func (h *Handler) GetConcert(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid concert id")
	}
	concert, err := h.concerts.Get(id)
	if err != nil {
		return notFound(c, "Concert not found")
	}
	return c.JSON(concert)
}

func (h *Handler) CreateConcert(c *fiber.Ctx) error {
	var in ConcertInput
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "Invalid request body")
	}

	concert, err := h.concerts.Create(&in)
	if err != nil {
		switch {
		case errors.Is(err, ErrGroupNotFound):
			return notFound(c, "Group not found")
		case errors.Is(err, ErrPastDate), errors.Is(err, ErrInvalidGenre):
			return badRequest(c, err.Error())
		default:
			return badRequest(c, err.Error())
		}
	}
	return c.Status(fiber.StatusCreated).JSON(concert)
}

type updateConcertRequest struct {
	Name        *string     `json:"name"`
	Description *string     `json:"description"`
	Genre       *string     `json:"genre"`
	Date        *time.Time  `json:"date"`
	Location    *string     `json:"location"`
	Image       *string     `json:"image"`
	Price       *float64    `json:"price"`
	GroupIDs    []uuid.UUID `json:"group_ids"`
}

func (h *Handler) UpdateConcert(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid concert id")
	}

	var req updateConcertRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	concert, err := h.concerts.Update(id, ConcertUpdate{
		Name:        req.Name,
		Description: req.Description,
		Genre:       req.Genre,
		Date:        req.Date,
		Location:    req.Location,
		Image:       req.Image,
		Price:       req.Price,
		GroupIDs:    req.GroupIDs,
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrConcertNotFound):
			return notFound(c, "Concert not found")
		case errors.Is(err, ErrGroupNotFound):
			return notFound(c, "Group not found")
		case errors.Is(err, ErrInvalidGenre):
			return badRequest(c, err.Error())
		default:
			return internalError(c)
		}
	}
	return c.JSON(concert)
}

func (h *Handler) DeleteConcert(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid concert id")
	}
	if err := h.concerts.Delete(id); err != nil {
		if errors.Is(err, ErrConcertNotFound) {
			return notFound(c, "Concert not found")
		}
		return internalError(c)
	}
	return c.JSON(fiber.Map{"message": "Concert deleted"})
}

func (h *Handler) AddConcertGroup(c *fiber.Ctx) error {
	concertID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid concert id")
	}
	groupID, err := uuid.Parse(c.Params("groupId"))
	if err != nil {
		return badRequest(c, "Invalid group id")
	}

	concert, err := h.concerts.AddGroup(concertID, groupID)
	if err != nil {
		switch {
		case errors.Is(err, ErrConcertNotFound):
			return notFound(c, "Concert not found")
		case errors.Is(err, ErrGroupNotFound):
			return notFound(c, "Group not found")
		default:
			return internalError(c)
		}
	}
	return c.JSON(concert)
}

func (h *Handler) RemoveConcertGroup(c *fiber.Ctx) error {
	concertID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid concert id")
	}
	groupID, err := uuid.Parse(c.Params("groupId"))
	if err != nil {
		return badRequest(c, "Invalid group id")
	}

	concert, err := h.concerts.RemoveGroup(concertID, groupID)
	if err != nil {
		if errors.Is(err, ErrConcertNotFound) {
			return notFound(c, "Concert not found")
		}
		return internalError(c)
	}
	return c.JSON(concert)
}

// --- groups ---

func (h *Handler) ListGroups(c *fiber.Ctx) error {
	groups, err := h.groups.List()
	if err != nil {
		return internalError(c)
	}
	return c.JSON(groups)
}

func (h *Handler) GetGroup(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid group id")
	}
	group, err := h.groups.Get(id)
	if err != nil {
		return notFound(c, "Group not found")
	}
	return c.JSON(group)
}

func (h *Handler) CreateGroup(c *fiber.Ctx) error {
	var in GroupInput
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if in.Name == "" {
		return badRequest(c, "name is required")
	}

	group, err := h.groups.Create(&in)
	if err != nil {
		return badRequest(c, err.Error())
	}
	return c.Status(fiber.StatusCreated).JSON(group)
}

func (h *Handler) UpdateGroup(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid group id")
	}

	var in GroupInput
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "Invalid request body")
	}

	group, err := h.groups.Update(id, &in)
	if err != nil {
		switch {
		case errors.Is(err, ErrGroupNotFound):
			return notFound(c, "Group not found")
		case errors.Is(err, ErrInvalidGenre):
			return badRequest(c, err.Error())
		default:
			return internalError(c)
		}
	}
	return c.JSON(group)
}

func (h *Handler) DeleteGroup(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid group id")
	}
	if err := h.groups.Delete(id); err != nil {
		if errors.Is(err, ErrGroupNotFound) {
			return notFound(c, "Group not found")
		}
		return internalError(c)
	}
	return c.JSON(fiber.Map{"message": "Group deleted"})
}

// --- tickets ---

type purchaseRequest struct {
	ConcertID uuid.UUID `json:"concert_id"`
}

func (h *Handler) PurchaseTicket(c *fiber.Ctx) error {
	userID, err := principal.UserID(c)
	if err != nil {
		return unauthorized(c, "Unauthorized")
	}

	var req purchaseRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if req.ConcertID == uuid.Nil {
		return badRequest(c, "concert_id is required")
	}

	ticket, err := h.tickets.Purchase(userID, req.ConcertID)
	if err != nil {
		return ticketError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(ticket)
}

// IssueTicket is the Stripe success landing: it books the seat for the user
// named in the URL and sends the browser back to the ticket list.
func (h *Handler) IssueTicket(c *fiber.Ctx) error {
	userID, err := uuid.Parse(c.Params("userId"))
	if err != nil {
		return badRequest(c, "Invalid user id")
	}
	concertID, err := uuid.Parse(c.Params("concertId"))
	if err != nil {
		return badRequest(c, "Invalid concert id")
	}

	ticket, err := h.tickets.Purchase(userID, concertID)
	if err != nil {
		return ticketError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(ticket)
}

func (h *Handler) ListTickets(c *fiber.Ctx) error {
	tickets, err := h.tickets.List()
	if err != nil {
		return internalError(c)
	}
	return c.JSON(tickets)
}

func (h *Handler) MyTickets(c *fiber.Ctx) error {
	userID, err := principal.UserID(c)
	if err != nil {
		return unauthorized(c, "Unauthorized")
	}
	tickets, err := h.tickets.ListByUser(userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return notFound(c, "User not found")
		}
		return internalError(c)
	}
	return c.JSON(tickets)
}

func (h *Handler) GetTicket(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid ticket id")
	}
	ticket, err := h.tickets.Get(id)
	if err != nil {
		return notFound(c, "Ticket not found")
	}
	return c.JSON(ticket)
}

func (h *Handler) RemoveTicket(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid ticket id")
	}

	if err := h.tickets.Remove(id); err != nil {
		switch {
		case errors.Is(err, ErrTicketNotFound):
			return notFound(c, "Ticket not found")
		case errors.Is(err, ErrTicketNoConcert):
			return conflict(c, err.Error())
		default:
			return internalError(c)
		}
	}
	return c.JSON(fiber.Map{"message": "Ticket removed successfully"})
}

// --- payments ---

type checkoutRequest struct {
	ConcertID uuid.UUID `json:"concert_id"`
}

// Checkout creates a Stripe session for the concert's ticket price and
// answers with a 303 redirect to the hosted payment page.
func (h *Handler) Checkout(c *fiber.Ctx) error {
	userID, err := principal.UserID(c)
	if err != nil {
		return unauthorized(c, "Unauthorized")
	}

	var req checkoutRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	concert, err := h.concerts.Get(req.ConcertID)
	if err != nil {
		return notFound(c, "Concert not found")
	}

	checkoutURL, err := h.payments.CheckoutURL(userID, concert.ID, concert.Price, concert.Name)
	if err != nil {
		return badRequest(c, err.Error())
	}
	return c.Redirect(checkoutURL, fiber.StatusSeeOther)
}

// --- favorites & wishlist ---

type favoriteRequest struct {
	GroupID uuid.UUID `json:"group_id"`
}

type wishlistRequest struct {
	ConcertID uuid.UUID `json:"concert_id"`
}

func (h *Handler) ListFavorites(c *fiber.Ctx) error {
	userID, err := principal.UserID(c)
	if err != nil {
		return unauthorized(c, "Unauthorized")
	}
	groups, err := h.profile.ListFavoriteGroups(userID)
	if err != nil {
		return internalError(c)
	}
	return c.JSON(groups)
}

func (h *Handler) AddFavorite(c *fiber.Ctx) error {
	userID, err := principal.UserID(c)
	if err != nil {
		return unauthorized(c, "Unauthorized")
	}

	var req favoriteRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	if err := h.profile.AddFavoriteGroup(userID, req.GroupID); err != nil {
		switch {
		case errors.Is(err, ErrGroupNotFound):
			return notFound(c, "Group not found")
		case errors.Is(err, ErrUserNotFound):
			return notFound(c, "User not found")
		case errors.Is(err, ErrAlreadyFavorite):
			return conflict(c, err.Error())
		default:
			return internalError(c)
		}
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Group added to favorites"})
}

func (h *Handler) RemoveFavorite(c *fiber.Ctx) error {
	userID, err := principal.UserID(c)
	if err != nil {
		return unauthorized(c, "Unauthorized")
	}
	groupID, err := uuid.Parse(c.Params("groupId"))
	if err != nil {
		return badRequest(c, "Invalid group id")
	}

	if err := h.profile.RemoveFavoriteGroup(userID, groupID); err != nil {
		if errors.Is(err, ErrGroupNotFound) {
			return notFound(c, "Group not found")
		}
		return internalError(c)
	}
	return c.JSON(fiber.Map{"message": "Group removed from favorites"})
}

func (h *Handler) ListWishlist(c *fiber.Ctx) error {
	userID, err := principal.UserID(c)
	if err != nil {
		return unauthorized(c, "Unauthorized")
	}
	concerts, err := h.profile.ListWishlist(userID)
	if err != nil {
		return internalError(c)
	}
	return c.JSON(concerts)
}

func (h *Handler) AddWishlist(c *fiber.Ctx) error {
	userID, err := principal.UserID(c)
	if err != nil {
		return unauthorized(c, "Unauthorized")
	}

	var req wishlistRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	if err := h.profile.AddToWishlist(userID, req.ConcertID); err != nil {
		switch {
		case errors.Is(err, ErrConcertNotFound):
			return notFound(c, "Concert not found")
		case errors.Is(err, ErrUserNotFound):
			return notFound(c, "User not found")
		case errors.Is(err, ErrAlreadyWishlisted):
			return conflict(c, err.Error())
		default:
			return internalError(c)
		}
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Concert added to wishlist"})
}

func (h *Handler) RemoveWishlist(c *fiber.Ctx) error {
	userID, err := principal.UserID(c)
	if err != nil {
		return unauthorized(c, "Unauthorized")
	}
	concertID, err := uuid.Parse(c.Params("concertId"))
	if err != nil {
		return badRequest(c, "Invalid concert id")
	}

	if err := h.profile.RemoveFromWishlist(userID, concertID); err != nil {
		if errors.Is(err, ErrConcertNotFound) {
			return notFound(c, "Concert not found")
		}
		return internalError(c)
	}
	return c.JSON(fiber.Map{"message": "Concert removed from wishlist"})
}

// --- helpers ---

func ticketError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, ErrConcertNotFound):
		return notFound(c, "Concert not found")
	case errors.Is(err, ErrUserNotFound):
		return notFound(c, "User not found")
	case errors.Is(err, ErrSoldOut):
		return conflict(c, err.Error())
	default:
		return internalError(c)
	}
}

func parseDate(v string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", v)
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: true, Message: msg})
}

func unauthorized(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: true, Message: msg})
}

func notFound(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Error: true, Message: msg})
}

func conflict(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Error: true, Message: msg})
}

func internalError(c *fiber.Ctx) error {
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
		Error: true, Message: "Internal server error",
	})
}
