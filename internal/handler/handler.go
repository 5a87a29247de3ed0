// Package handler exposes the club's services over HTTP with gin.
package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/xenking/efitness/internal/domain/account"
	"github.com/xenking/efitness/internal/domain/attendance"
	"github.com/xenking/efitness/internal/domain/cart"
	"github.com/xenking/efitness/internal/domain/dashboard"
	"github.com/xenking/efitness/internal/domain/notification"
	"github.com/xenking/efitness/internal/domain/order"
	"github.com/xenking/efitness/internal/domain/product"
	"github.com/xenking/efitness/internal/domain/progress"
	"github.com/xenking/efitness/internal/domain/subscription"
	"github.com/xenking/efitness/internal/domain/training"
	"github.com/xenking/efitness/internal/session"
)

// Accounts is implemented by *account.Service.
type Accounts interface {
	Login(ctx context.Context, email, password, userType string) (*account.Account, error)
	Signup(ctx context.Context, req account.SignupRequest) (int64, error)
	Create(ctx context.Context, a account.Account, password string) (int64, error)
	Get(ctx context.Context, role account.Role, id int64) (*account.Account, error)
	List(ctx context.Context, role account.Role) ([]account.Account, error)
	SearchClients(ctx context.Context, query string) ([]account.Account, error)
	Update(ctx context.Context, role account.Role, id int64, p account.Patch) error
	Delete(ctx context.Context, role account.Role, id int64) error
	SetIntroVideo(ctx context.Context, trainerID int64, url string) (*string, error)
}

// Products is implemented by *product.Service.
type Products interface {
	ListAvailable(ctx context.Context) ([]product.Product, error)
	List(ctx context.Context, f product.Filter) ([]product.Product, error)
	Create(ctx context.Context, p product.Product) (int64, error)
	Update(ctx context.Context, id int64, p product.Patch) error
	Delete(ctx context.Context, id int64) error
}

// Carts is implemented by *cart.Service.
type Carts interface {
	Add(ctx context.Context, sessionID string, productID int64, qty int) (cart.Cart, error)
	Remove(ctx context.Context, sessionID string, productID int64) (cart.Cart, error)
	Get(ctx context.Context, sessionID string) (cart.Cart, error)
}

// Orders is implemented by *order.Service.
type Orders interface {
	Checkout(ctx context.Context, sessionID string, clientID int64, method string) (*order.Placed, error)
	History(ctx context.Context, clientID int64) ([]order.Order, error)
	Details(ctx context.Context, clientID, orderID int64) (*order.Order, error)
	Receipt(ctx context.Context, clientID, orderID int64) (string, error)
	ListAll(ctx context.Context) ([]order.Order, error)
	Update(ctx context.Context, orderID int64, p order.Patch) error
	Delete(ctx context.Context, orderID int64) error
}

// Subscriptions is implemented by *subscription.Service.
type Subscriptions interface {
	ListPlans(ctx context.Context) ([]subscription.Plan, error)
	CreatePlan(ctx context.Context, p subscription.Plan) (int64, error)
	UpdatePlan(ctx context.Context, id int64, p subscription.PlanPatch) error
	DeletePlan(ctx context.Context, id int64) error
	Purchase(ctx context.Context, req subscription.PurchaseRequest) (*subscription.Purchase, error)
	Active(ctx context.Context, clientID int64) ([]subscription.Subscription, error)
	Payments(ctx context.Context, clientID int64) ([]subscription.Payment, error)
	Receipt(ctx context.Context, clientID, paymentID int64) (string, error)
	ListAll(ctx context.Context) ([]subscription.Subscription, error)
	Delete(ctx context.Context, id int64) error
	SetStatus(ctx context.Context, id int64, active *bool, paymentStatus string) error
}

// Attendance is implemented by *attendance.Service.
type Attendance interface {
	CheckIn(ctx context.Context, clientID int64, method string) (*attendance.Record, error)
	CheckOut(ctx context.Context, clientID int64) (*attendance.Record, error)
	Recent(ctx context.Context, clientID int64) ([]attendance.Record, error)
	Counts(ctx context.Context) ([]attendance.ClientCount, error)
	ListAll(ctx context.Context) ([]attendance.Record, error)
	CheckIns(ctx context.Context, clientID int64) ([]attendance.Record, error)
	CheckOuts(ctx context.Context, clientID int64) ([]attendance.Record, error)
}

// Progress is implemented by *progress.Service.
type Progress interface {
	AddHealthLog(ctx context.Context, l progress.HealthLog) (int64, error)
	HealthLogs(ctx context.Context, clientID int64) ([]progress.HealthLog, error)
	MyGoals(ctx context.Context, clientID int64) ([]progress.Goal, error)
	SetAchieved(ctx context.Context, clientID, goalID int64, achieved *bool) error
	ClientsWithGoals(ctx context.Context) ([]progress.ClientGoals, error)
	CreateGoal(ctx context.Context, g progress.Goal) (int64, error)
	UpdateGoal(ctx context.Context, id int64, p progress.GoalPatch) error
	DeleteGoal(ctx context.Context, id int64) error
	Snapshots(ctx context.Context, clientID int64) ([]progress.Snapshot, error)
	AddSnapshot(ctx context.Context, snap progress.Snapshot) (int64, error)
	WorkoutLogs(ctx context.Context, clientID int64) ([]progress.WorkoutLog, error)
	AddWorkoutLog(ctx context.Context, l progress.WorkoutLog) (int64, error)
}

// Training is implemented by *training.Service.
type Training interface {
	PlansByTrainer(ctx context.Context, trainerID int64) ([]training.WorkoutPlan, error)
	ActivePlans(ctx context.Context) ([]training.WorkoutPlan, error)
	CreatePlan(ctx context.Context, trainerID int64, p training.WorkoutPlan) (int64, error)
	UpdatePlan(ctx context.Context, trainerID, id int64, p training.PlanPatch) error
	DeletePlan(ctx context.Context, trainerID, id int64) error
	Exercises(ctx context.Context) ([]training.Exercise, error)
	CreateExercise(ctx context.Context, e training.Exercise) (int64, error)
	UpdateExercise(ctx context.Context, id int64, p training.ExercisePatch) error
	DeleteExercise(ctx context.Context, id int64) error
	Classes(ctx context.Context) ([]training.VirtualClass, error)
	ClassesByTrainer(ctx context.Context, trainerID int64) ([]training.VirtualClass, error)
	CreateClass(ctx context.Context, trainerID int64, c training.VirtualClass) (int64, error)
	UpdateClass(ctx context.Context, trainerID int64, c training.VirtualClass) error
	DeleteClass(ctx context.Context, trainerID, id int64) error
}

// Notifications is implemented by *notification.Service.
type Notifications interface {
	Send(ctx context.Context, req notification.SendRequest) (int64, error)
	Inbox(ctx context.Context, clientID int64) ([]notification.Notification, error)
	MarkRead(ctx context.Context, clientID, id int64) error
	SubmitFeedback(ctx context.Context, f notification.Feedback) (int64, error)
	Feedback(ctx context.Context) ([]notification.Feedback, error)
	DeleteFeedback(ctx context.Context, id int64) error
}

// Dashboards is implemented by *dashboard.Service.
type Dashboards interface {
	Admin(ctx context.Context) (*dashboard.AdminKPIs, error)
	Client(ctx context.Context, clientID int64) (*dashboard.ClientKPIs, error)
	Trainer(ctx context.Context, trainerID int64) (*dashboard.TrainerKPIs, error)
}

// Deps holds the services the handlers delegate to.
type Deps struct {
	Sessions      *session.Manager
	Accounts      Accounts
	Products      Products
	Carts         Carts
	Orders        Orders
	Subscriptions Subscriptions
	Attendance    Attendance
	Progress      Progress
	Training      Training
	Notifications Notifications
	Dashboards    Dashboards
}

// Handler serves the club's JSON API.
type Handler struct {
	Deps
}

// New returns a Handler.
func New(d Deps) *Handler {
	return &Handler{Deps: d}
}

// Register mounts every route on r. Session loading must run before r.
func (h *Handler) Register(r gin.IRouter) {
	var (
		client  = r.Group("", session.Require(account.RoleClient))
		trainer = r.Group("", session.Require(account.RoleTrainer))
		admin   = r.Group("", session.Require(account.RoleAdmin))
		members = r.Group("", session.Require(account.RoleClient, account.RoleTrainer))
		anyone  = r.Group("", session.Require())
	)

	// Identity.
	r.POST("/login", h.login)
	r.POST("/signup", h.signup)
	r.POST("/logout", h.logout)
	r.GET("/api/user-session", h.userSession)
	anyone.GET("/profile", h.profile)
	anyone.PUT("/profile", h.updateProfile)
	trainer.POST("/api/trainer/update-intro-video-url", h.updateIntroVideo)

	for _, m := range []struct {
		role     account.Role
		plural   string
		singular string
	}{
		{account.RoleClient, "clients", "client"},
		{account.RoleTrainer, "trainers", "trainer"},
		{account.RoleAdmin, "admins", "admin"},
	} {
		admin.GET("/manage/profile/"+m.plural, h.listAccounts(m.role))
		admin.POST("/manage/profile/"+m.plural, h.createAccount(m.role))
		admin.GET("/manage/profile/"+m.singular+"/:id", h.getAccount(m.role))
		admin.PUT("/manage/profile/"+m.singular+"/:id", h.updateAccount(m.role))
		admin.DELETE("/manage/profile/"+m.singular+"/:id", h.deleteAccount(m.role))
	}
	admin.GET("/api/admin/clients/:clientId", h.viewClient)
	trainer.GET("/api/clients", h.searchClients)
	trainer.GET("/trainer/client/:clientId", h.viewClient)
	client.GET("/client/trainer/:trainerId", h.viewTrainer)

	// Catalog, cart and checkout.
	client.GET("/api/products", h.listAvailableProducts)
	admin.GET("/admin/products", h.listProducts)
	admin.POST("/admin/products", h.createProduct)
	admin.PUT("/admin/products/:id", h.updateProduct)
	admin.DELETE("/admin/products/:id", h.deleteProduct)

	client.POST("/api/cart/add", h.addToCart)
	client.POST("/api/cart/remove", h.removeFromCart)
	client.GET("/api/cart", h.getCart)
	client.POST("/api/purchase", h.purchase)

	// Orders.
	client.GET("/api/client/orders", h.orderHistory)
	client.GET("/api/client/orders/:orderId/details", h.orderDetails)
	client.GET("/api/client/orders/:orderId/receipt", h.orderReceipt)
	admin.GET("/api/admin/orders", h.listOrders)
	admin.PUT("/api/admin/orders/:orderId", h.updateOrder)
	admin.DELETE("/api/admin/orders/:orderId", h.deleteOrder)

	// Subscriptions.
	admin.GET("/api/plans", h.listPlans)
	client.GET("/api/client/plans", h.listPlans)
	admin.POST("/api/plans", h.createPlan)
	admin.PUT("/api/plans/:id", h.updatePlan)
	admin.DELETE("/api/plans/:id", h.deletePlan)
	client.POST("/api/client/purchase", h.purchasePlan)
	client.GET("/api/client/active-subscriptions", h.activeSubscriptions)
	client.GET("/api/client/payments", h.payments)
	client.GET("/api/client/payments/:paymentId/receipt", h.paymentReceipt)
	admin.GET("/api/admin/subscriptions", h.listSubscriptions)
	admin.DELETE("/api/admin/subscriptions/:id", h.deleteSubscription)
	admin.PUT("/api/admin/subscriptions/:id/status", h.setSubscriptionStatus)

	// Attendance.
	client.POST("/api/attendance/checkin", h.checkIn)
	client.POST("/api/attendance/checkout", h.checkOut)
	client.GET("/api/attendance", h.recentAttendance)
	trainer.GET("/trainer/attendance/count", h.attendanceCounts)
	trainer.GET("/trainer/view/attendance", h.allAttendance)
	trainer.GET("/trainer/client/:clientId/checkin-history", h.checkInHistory)
	trainer.GET("/trainer/client/:clientId/checkout-history", h.checkOutHistory)

	// Progress.
	client.POST("/api/healthlog", h.addHealthLog)
	client.GET("/api/healthlog", h.healthLogs)
	client.GET("/goals/me", h.myGoals)
	client.PUT("/goals/update-status/:goalId", h.setGoalStatus)
	trainer.GET("/trainer/goals", h.clientGoals)
	trainer.POST("/trainer/goals", h.createGoal)
	trainer.PUT("/trainer/goals/:goalId", h.updateGoal)
	trainer.DELETE("/trainer/goals/:goalId", h.deleteGoal)
	trainer.GET("/api/clients/:clientId/details", h.clientDetails)
	trainer.GET("/api/clients/:clientId/progress", h.snapshots)
	trainer.POST("/api/clients/:clientId/progress", h.addSnapshot)
	trainer.GET("/api/clients/:clientId/workouts", h.workoutLogs)
	trainer.POST("/api/clients/:clientId/workouts", h.addWorkoutLog)

	// Training content.
	trainer.GET("/trainer/workout-plans", h.trainerPlans)
	trainer.POST("/trainer/workout-plans", h.createWorkoutPlan)
	trainer.PUT("/trainer/workout-plans/:planId", h.updateWorkoutPlan)
	trainer.DELETE("/trainer/workout-plans/:planId", h.deleteWorkoutPlan)
	client.GET("/client/workout-plans", h.activeWorkoutPlans)
	trainer.GET("/exercises", h.listExercises)
	trainer.POST("/exercises", h.createExercise)
	trainer.PUT("/exercises/:exerciseId", h.updateExercise)
	trainer.DELETE("/exercises/:exerciseId", h.deleteExercise)
	anyone.GET("/api/exercises", h.listExercises)
	client.GET("/client/exercises", h.listExercises)
	trainer.GET("/trainer/virtual-classes", h.trainerClasses)
	trainer.POST("/trainer/virtual-classes", h.createClass)
	trainer.PUT("/trainer/virtual-classes/:id", h.updateClass)
	trainer.DELETE("/trainer/virtual-classes/:id", h.deleteClass)
	anyone.GET("/api/virtualclasses", h.listClasses)

	// Notifications and feedback.
	admin.POST("/api/admin/notifications", h.sendNotification)
	client.GET("/api/notifications", h.inbox)
	client.POST("/api/notifications/:id/read", h.markRead)
	members.POST("/api/feedbacks", h.submitFeedback)
	admin.GET("/api/admin/feedbacks", h.listFeedback)
	admin.DELETE("/api/admin/feedbacks/:feedbackId", h.deleteFeedback)

	// Dashboards.
	admin.GET("/api/admin-dashboard-kpis", h.adminKPIs)
	client.GET("/api/client-dashboard-kpis", h.clientKPIs)
	trainer.GET("/api/trainer-dashboard-kpis", h.trainerKPIs)
}
