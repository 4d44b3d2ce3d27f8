package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"daily-diet/internal/domain"
	"daily-diet/internal/service"
)

const dateLayout = "2006-01-02"

// sessionCookieMaxAge mirrors the 7 day cookie the registration flow sets;
// the token itself never expires.
const sessionCookieMaxAge = int(7 * 24 * time.Hour / time.Second)

// Handler wires HTTP routes to domain services.
type Handler struct {
	users service.UserService
	meals service.MealService
}

func NewHandler(users service.UserService, meals service.MealService) *Handler {
	return &Handler{
		users: users,
		meals: meals,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.Use(corsMiddleware())

	api := router.Group("/api")
	{
		api.POST("/users", h.registerUser)
		api.GET("/health", func(ctx *gin.Context) {
			ctx.JSON(http.StatusOK, gin.H{"ok": "ok"})
		})

		meals := api.Group("/meals", requireSession(h.users))
		{
			meals.POST("", h.createMeal)
			meals.GET("", h.listMeals)
			meals.GET("/metrics", h.getMetrics)
			meals.GET("/:id", h.getMeal)
			meals.PUT("/:id", h.updateMeal)
			meals.DELETE("/:id", h.deleteMeal)
		}
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

type registerRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

func (h *Handler) registerUser(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.users.Register(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrEmailTaken) {
			c.JSON(http.StatusConflict, gin.H{"error": "user already exists"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.SetCookie(sessionCookieName, user.SessionToken, sessionCookieMaxAge, "/", "", false, true)
	c.JSON(http.StatusCreated, gin.H{
		"user":          userToResponse(*user),
		"session_token": user.SessionToken,
	})
}

type mealRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Date        string `json:"date" binding:"required"`
	Time        string `json:"time"`
	IsOnDiet    *bool  `json:"is_on_diet" binding:"required"`
}

func (r mealRequest) toInput() (service.MealInput, error) {
	date, err := time.Parse(dateLayout, r.Date)
	if err != nil {
		return service.MealInput{}, errors.New("date must be formatted as YYYY-MM-DD")
	}
	return service.MealInput{
		Name:        r.Name,
		Description: r.Description,
		Date:        date,
		Time:        r.Time,
		IsOnDiet:    *r.IsOnDiet,
	}, nil
}

func (h *Handler) createMeal(c *gin.Context) {
	user := currentUser(c)

	var req mealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	in, err := req.toInput()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	meal, err := h.meals.Create(c.Request.Context(), user.ID, in)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"meal": mealToResponse(*meal)})
}

func (h *Handler) listMeals(c *gin.Context) {
	user := currentUser(c)

	meals, err := h.meals.List(c.Request.Context(), user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	resp := make([]MealResponse, len(meals))
	for i := range meals {
		resp[i] = mealToResponse(meals[i])
	}
	c.JSON(http.StatusOK, gin.H{"meals": resp})
}

func (h *Handler) getMeal(c *gin.Context) {
	user := currentUser(c)

	meal, err := h.meals.Get(c.Request.Context(), c.Param("id"), user.ID)
	if err != nil {
		if errors.Is(err, service.ErrMealNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "meal not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"meal": mealToResponse(*meal)})
}

func (h *Handler) updateMeal(c *gin.Context) {
	user := currentUser(c)

	var req mealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	in, err := req.toInput()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	meal, err := h.meals.Update(c.Request.Context(), c.Param("id"), user.ID, in)
	if err != nil {
		if errors.Is(err, service.ErrMealNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "meal not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"meal": mealToResponse(*meal)})
}

func (h *Handler) deleteMeal(c *gin.Context) {
	user := currentUser(c)

	if err := h.meals.Delete(c.Request.Context(), c.Param("id"), user.ID); err != nil {
		if errors.Is(err, service.ErrMealNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "meal not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *Handler) getMetrics(c *gin.Context) {
	user := currentUser(c)

	metrics, err := h.meals.Metrics(c.Request.Context(), user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"metrics": MetricsResponse{
		TotalMeals:       metrics.TotalMeals,
		TotalOnDiet:      metrics.TotalOnDiet,
		TotalOffDiet:     metrics.TotalOffDiet,
		BestOnDietStreak: metrics.BestOnDietStreak,
	}})
}

type UserResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	CreatedAt string `json:"created_at"`
}

type MealResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Date        string `json:"date"`
	Time        string `json:"time"`
	IsOnDiet    bool   `json:"is_on_diet"`
	CreatedAt   string `json:"created_at"`
}

type MetricsResponse struct {
	TotalMeals       int `json:"total_meals"`
	TotalOnDiet      int `json:"total_on_diet"`
	TotalOffDiet     int `json:"total_off_diet"`
	BestOnDietStreak int `json:"best_on_diet_streak"`
}

func userToResponse(user domain.User) UserResponse {
	return UserResponse{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		CreatedAt: user.CreatedAt.Format(time.RFC3339),
	}
}

func mealToResponse(meal domain.Meal) MealResponse {
	return MealResponse{
		ID:          meal.ID,
		Name:        meal.Name,
		Description: meal.Description,
		Date:        meal.Date.Format(dateLayout),
		Time:        meal.Time,
		IsOnDiet:    meal.IsOnDiet,
		CreatedAt:   meal.CreatedAt.Format(time.RFC3339),
	}
}
