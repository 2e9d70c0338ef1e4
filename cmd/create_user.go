package cmd

import (
	"lms_backend/internal/model"
	"lms_backend/internal/repository"
	"lms_backend/internal/service"
	"lms_backend/pkg/database"
	"lms_backend/pkg/logger"

	"github.com/spf13/cobra"
)

var createUserCmd = &cobra.Command{
	Use:   "create-user",
	Short: "创建指定角色的用户（初始化教师或管理员）",
	RunE: func(cmd *cobra.Command, args []string) error {
		email, _ := cmd.Flags().GetString("email")
		name, _ := cmd.Flags().GetString("name")
		password, _ := cmd.Flags().GetString("password")
		role, _ := cmd.Flags().GetString("role")

		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		logger.InitLogger(cfg)
		defer logger.Log.Sync()

		db, err := database.InitDB(&cfg.Database, true)
		if err != nil {
			return err
		}
		if sqlDB, err := db.DB(); err == nil {
			defer sqlDB.Close()
		}

		users := service.NewUserService(repository.NewUserRepository(db))
		user, err := users.CreateUser(cmd.Context(), name, email, password, model.UserRole(role))
		if err != nil {
			return err
		}
		cmd.Printf("已创建用户 #%d %s (%s)\n", user.ID, user.Email, user.Role)
		return nil
	},
}

func init() {
	createUserCmd.Flags().String("email", "", "邮箱")
	createUserCmd.Flags().String("name", "admin", "姓名")
	createUserCmd.Flags().String("password", "", "密码，至少 8 位")
	createUserCmd.Flags().String("role", string(model.Admin), "角色 student/teacher/admin")
	_ = createUserCmd.MarkFlagRequired("email")
	_ = createUserCmd.MarkFlagRequired("password")
}
