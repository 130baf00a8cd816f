// token emite un JWT de operador firmado con JWT_SECRET (desarrollo, soporte).
//
// Uso: go run ./cmd/token -user u1 -role cashier -branch b1
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/jhoicas/retail-ledger/internal/application/auth"
	"github.com/jhoicas/retail-ledger/pkg/config"
)

func main() {
	user := flag.String("user", "", "ID del operador")
	role := flag.String("role", "cashier", "admin, manager, cashier o stocker")
	branch := flag.String("branch", "", "sucursal del operador (vacío solo para admin)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cargar configuración: %v\n", err)
		os.Exit(1)
	}
	issuer := auth.NewTokenIssuer(auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})
	tok, err := issuer.Issue(auth.TokenRequest{UserID: *user, BranchID: *branch, Role: *role})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Emitir token: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(tok)
}
