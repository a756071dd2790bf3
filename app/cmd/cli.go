package cmd

import (
	"context"
	"log"
	"os"

	"github.com/Rakhulsr/storefront/app/configs"
	"github.com/Rakhulsr/storefront/app/db/seeders"
	"github.com/Rakhulsr/storefront/app/models/migrations"
	"github.com/urfave/cli/v3"
)

func RunCli() {
	cmd := &cli.Command{
		Name:  "storefront",
		Usage: "Storefront API server and maintenance tasks",
		Commands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "Start the HTTP API",
				Action: func(ctx context.Context, c *cli.Command) error {
					return serve(ctx, configs.LoadEnv())
				},
			},
			{
				Name:  "migrate",
				Usage: "Run database migration",
				Action: func(ctx context.Context, c *cli.Command) error {
					db, err := configs.OpenConnection(configs.LoadEnv())
					if err != nil {
						return err
					}
					if err := migrations.AutoMigrate(db); err != nil {
						return err
					}
					log.Println("✅ Migration complete")
					return nil
				},
			},
			{
				Name:  "seed",
				Usage: "Fill the database with demo categories, products and users",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "products", Value: 10, Usage: "products per category"},
					&cli.IntFlag{Name: "customers", Value: 5, Usage: "fake customer accounts"},
					&cli.StringFlag{Name: "admin-password", Value: "admin12345", Usage: "password for ADMIN_EMAIL"},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					env := configs.LoadEnv()
					db, err := configs.OpenConnection(env)
					if err != nil {
						return err
					}
					if err := migrations.AutoMigrate(db); err != nil {
						return err
					}
					err = seeders.DBSeed(db, seeders.Options{
						AdminEmail:          env.AdminEmail,
						AdminPassword:       c.String("admin-password"),
						ProductsPerCategory: int(c.Int("products")),
						Customers:           int(c.Int("customers")),
					})
					if err != nil {
						return err
					}
					log.Println("✅ Seeding complete")
					return nil
				},
			},
			{
				Name:  "generate-keys",
				Usage: "Generate new session authentication and encryption keys for .env",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "out", Value: ".env.new_keys", Usage: "file to write the keys to"},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					path := c.String("out")
					if _, err := configs.WriteSessionKeys(path); err != nil {
						return err
					}
					log.Printf("✅ Keys written to %s. Copy them into your .env file; regenerating logs every user out.", path)
					return nil
				},
			},
		},
	}

	args := os.Args
	if len(args) == 1 {
		args = append(args, "serve")
	}

	if err := cmd.Run(context.Background(), args); err != nil {
		log.Fatal(err)
	}
}
