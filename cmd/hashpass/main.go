package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/gestaodemandas/plataforma/internal/auth"
)

// Gera um hash Argon2id para uso em seeds e trocas manuais de senha.
func main() {
	senha := ""
	if len(os.Args) > 1 {
		senha = os.Args[1]
	} else {
		fmt.Fprint(os.Stderr, "senha: ")
		reader := bufio.NewReader(os.Stdin)
		linha, err := reader.ReadString('\n')
		if err != nil && linha == "" {
			fmt.Fprintln(os.Stderr, "erro ao ler senha:", err)
			os.Exit(1)
		}
		senha = strings.TrimRight(linha, "\r\n")
	}

	if strings.TrimSpace(senha) == "" {
		fmt.Fprintln(os.Stderr, "senha vazia")
		os.Exit(1)
	}

	hash, err := auth.Hash(senha)
	if err != nil {
		fmt.Fprintln(os.Stderr, "erro ao gerar hash:", err)
		os.Exit(1)
	}

	fmt.Println(hash)
}
