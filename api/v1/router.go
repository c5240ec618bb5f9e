package v1

import (
	"github.com/gin-gonic/gin"
	"github.com/taskizy-api/middleware"
	"github.com/taskizy-api/services"
)

// Services holds the service layer the v1 controllers are built on
type Services struct {
	Auth  *services.AuthService
	Users *services.UserService
	Rooms *services.RoomService
	Tasks *services.TaskService
}

// RegisterRoutes registers all v1 API routes
func RegisterRoutes(router *gin.RouterGroup, svc Services) {
	authController := NewAuthController(svc.Auth)
	userController := NewUserController(svc.Users)
	roomController := NewRoomController(svc.Rooms)
	taskController := NewTaskController(svc.Tasks)

	// Signup and token endpoints are public
	authController.RegisterRoutes(router)

	authRouter := router.Group("")
	authRouter.Use(middleware.AuthMiddleware(svc.Auth))

	roomMember := middleware.RoomMemberMiddleware(svc.Rooms)
	roomAdmin := middleware.RoomAdminMiddleware()

	users := authRouter.Group("/users")
	{
		users.POST("/logout/", authController.Logout)
		users.GET("/get-users/me/", userController.GetMe)
		users.PATCH("/get-users/me/", userController.UpdateMe)
		users.PUT("/get-users/me/", userController.UpdateMe)
		users.PUT("/get-users/me/avatar/", userController.UploadAvatar)
		users.GET("/get-users/:room_id/", roomMember, userController.ListNonMembers)
	}

	authRouter.GET("/rooms/", roomController.ListRooms)
	authRouter.POST("/rooms/", roomController.CreateRoom)

	room := authRouter.Group("/room/:room_id")
	room.Use(roomMember)
	{
		room.GET("/:room_slug/", roomController.GetRoom)
		room.PUT("/:room_slug/", roomAdmin, roomController.UpdateRoom)
		room.DELETE("/:room_slug/", roomAdmin, roomController.DeleteRoom)
		room.PATCH("/:room_slug/assign_as_admin/", roomAdmin, roomController.AssignAdmin)
		room.GET("/:room_slug/members/", roomController.ListMembers)
		room.POST("/:room_slug/members/", roomController.AddMembers)
		room.DELETE("/member/:member_id/destroy/", roomController.RemoveMember)
	}

	task := authRouter.Group("/task/room/:room_id")
	task.Use(roomMember)
	{
		task.GET("/create/", taskController.ListRoomTasks)
		task.POST("/create/", taskController.CreateTask)
		task.GET("/task/:task_id/", taskController.GetTask)
		task.PUT("/task/:task_id/", taskController.UpdateTask)
		task.PATCH("/task/:task_id/", taskController.UpdateTask)
		task.DELETE("/task/:task_id/", taskController.DeleteTask)
		task.PUT("/task/:task_id/mark-done/", taskController.UpdateTask)
		task.PATCH("/task/:task_id/mark-done/", taskController.UpdateTask)
		task.DELETE("/task/:task_id/delete/", taskController.DeleteTask)
	}

	authRouter.GET("/tasks/user/:user_id/", taskController.ListUserTasks)
}
