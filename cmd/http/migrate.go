package main

import (
	"hospital-service/cmd/migration"
	"hospital-service/internal/app/drivers/database"

	"github.com/spf13/cobra"
)

func newMigrateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back postgres schema migrations",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply every pending migration",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := loadRuntime()
			if err != nil {
				return err
			}
			db, err := database.NewPostgresDB(rt.driverConfig, rt.bootLog)
			if err != nil {
				return err
			}
			defer db.Close()

			n, err := migration.Up(db, rt.driverConfig.PostgresDB.MigrationSource)
			if err != nil {
				return err
			}
			rt.bootLog.Printf("Applied %d migrations!", n)
			return nil
		},
	})

	var steps int
	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back the latest migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := loadRuntime()
			if err != nil {
				return err
			}
			db, err := database.NewPostgresDB(rt.driverConfig, rt.bootLog)
			if err != nil {
				return err
			}
			defer db.Close()

			n, err := migration.Down(db, rt.driverConfig.PostgresDB.MigrationSource, steps)
			if err != nil {
				return err
			}
			rt.bootLog.Printf("Rolled back %d migrations!", n)
			return nil
		},
	}
	down.Flags().IntVar(&steps, "steps", 1, "number of migrations to roll back")
	cmd.AddCommand(down)

	return cmd
}
