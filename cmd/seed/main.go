package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/frahspaces/storefront-backend/config"
	"github.com/frahspaces/storefront-backend/internal/app/model"
	"github.com/frahspaces/storefront-backend/internal/app/repository"
	"github.com/frahspaces/storefront-backend/internal/app/service"
	"github.com/frahspaces/storefront-backend/internal/db"
)

func main() {
	adminEmail := flag.String("admin-email", "", "create an admin account with this email")
	adminPassword := flag.String("admin-password", "", "password for -admin-email")
	yes := flag.Bool("y", false, "import without asking for confirmation")
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: go run ./cmd/seed [-admin-email a@b -admin-password p] [-y] [products.xlsx]")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() == 0 && *adminEmail == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	if err := db.Initialize(&cfg.Database); err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close()

	if err := db.AutoMigrate(db.GetDB()); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	userRepo := repository.NewUserRepository(db.GetDB())
	catalog := service.NewCatalogService(
		repository.NewProductRepository(db.GetDB()),
		repository.NewCategoryRepository(db.GetDB()),
	)

	if *adminEmail != "" {
		createAdmin(service.NewUserService(userRepo), *adminEmail, *adminPassword)
	}

	if flag.NArg() > 0 {
		importProducts(catalog, flag.Arg(0), *yes)
	}
}

func createAdmin(users service.UserService, email, password string) {
	user, err := users.CreateUser(service.NewAccount{
		Email:    email,
		Password: password,
		FullName: "Administrator",
		Role:     model.RoleAdmin,
	})
	if err != nil {
		log.Fatal("Failed to create admin:", err)
	}
	fmt.Printf("Admin created: %s (%s)\n", user.Email, user.ID)
}

func importProducts(catalog service.CatalogService, filePath string, yes bool) {
	fmt.Printf("Reading XLSX file: %s\n", filePath)
	f, err := os.Open(filePath)
	if err != nil {
		log.Fatal("Failed to open XLSX:", err)
	}
	defer f.Close()

	products, skipped, err := service.ReadProductsXLSX(f)
	if err != nil {
		log.Fatal("Failed to read XLSX:", err)
	}
	for _, s := range skipped {
		fmt.Printf("Skipping %s\n", s.Error())
	}

	fmt.Printf("Total products to import: %d\n", len(products))
	if len(products) == 0 {
		return
	}

	if !yes {
		fmt.Print("Do you want to proceed with the import? (yes/no): ")
		var confirm string
		fmt.Scanln(&confirm)
		if confirm != "yes" && confirm != "y" {
			fmt.Println("Import cancelled.")
			return
		}
	}

	ensureCategories(catalog, products)

	imported := 0
	for i, p := range products {
		if _, err := catalog.CreateProduct(p); err != nil {
			fmt.Printf("Failed to import %q: %v\n", p.Name, err)
			continue
		}
		imported++
		if (i+1)%100 == 0 {
			fmt.Printf("Progress: %d/%d\n", i+1, len(products))
		}
	}

	fmt.Printf("Import completed: %d imported, %d failed, %d skipped\n", imported, len(products)-imported, len(skipped))
}

// ensureCategories creates any category named by the sheet that does not
// exist yet.
func ensureCategories(catalog service.CatalogService, products []service.ProductInput) {
	existing, err := catalog.ListCategories()
	if err != nil {
		log.Fatal("Failed to list categories:", err)
	}
	known := make(map[string]bool, len(existing))
	for _, c := range existing {
		known[strings.ToLower(c.Name)] = true
	}

	for _, p := range products {
		name := strings.TrimSpace(p.CategoryName)
		if name == "" || known[strings.ToLower(name)] {
			continue
		}
		if _, err := catalog.CreateCategory(service.CategoryInput{Name: name}); err != nil {
			fmt.Printf("Failed to create category %q: %v\n", name, err)
			continue
		}
		known[strings.ToLower(name)] = true
		fmt.Printf("Category created: %s\n", name)
	}
}
