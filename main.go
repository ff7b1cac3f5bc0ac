package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/illarion/lockkv/cmd"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "set":
		runSet(ctx, os.Args[2:])
	case "get":
		runGet(ctx, os.Args[2:])
	case "rm":
		runRm(ctx, os.Args[2:])
	case "ls", "status":
		runStatus(ctx, os.Args[1], os.Args[2:])
	case "inspect":
		runInspect(ctx, os.Args[2:])
	case "compact":
		runCompact(ctx, os.Args[2:])
	case "serve":
		runServe(ctx, os.Args[2:])
	case "completion":
		runCompletion(ctx, os.Args[2:])
	case "help", "-h", "--help":
		if len(os.Args) <= 2 {
			printUsage()
			return
		}
		printCommandHelp(os.Args[2])
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func runSet(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("set", flag.ExitOnError)
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}

	cmd.Set(ctx, fs.Args())
}

func runGet(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("get", flag.ExitOnError)
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}

	cmd.Get(ctx, fs.Args())
}

func runRm(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("rm", flag.ExitOnError)
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}

	cmd.Remove(ctx, fs.Args())
}

func runStatus(ctx context.Context, name string, args []string) {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	quietShort := fs.Bool("q", false, "Print keys only")
	quietLong := fs.Bool("quiet", false, "Print keys only")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}

	cmd.Status(ctx, *quietShort || *quietLong)
}

func runInspect(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("inspect", flag.ExitOnError)
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}

	cmd.Inspect(ctx, fs.Args())
}

func runCompact(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("compact", flag.ExitOnError)
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}

	cmd.Compact(ctx)
}

func runServe(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	addr := fs.String("addr", "", "Listen address (default from LOCKKV_HTTP_ADDR or config)")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}

	cmd.Serve(ctx, *addr)
}

func runCompletion(_ context.Context, args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: lockkv completion <bash|zsh|fish>")
		os.Exit(1)
	}
	cmd.Completion(args[0])
}

func printUsage() {
	fmt.Println("lockkv - Encrypted key/value storage backed by the OS keyring")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  lockkv <command> [arguments]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  set         Encrypt and store a value")
	fmt.Println("  get         Decrypt and print a value")
	fmt.Println("  rm          Remove values and their keys")
	fmt.Println("  ls, status  List stored keys")
	fmt.Println("  inspect     Show which stores hold an entry for a key")
	fmt.Println("  compact     Compact the store to reclaim disk space")
	fmt.Println("  serve       Serve the store over HTTP")
	fmt.Println("  completion  Generate shell completions")
	fmt.Println("  help        Show help for a command")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  lockkv set session               # Prompt for a value and store it")
	fmt.Println("  lockkv get session               # Print the stored value")
	fmt.Println("  cat token.txt | lockkv set token # Store piped input")
	fmt.Println("  lockkv serve --addr :8420        # Start the HTTP API")
	fmt.Println()
	fmt.Println("Use 'lockkv help <command>' for more information about a command.")
}

func printCommandHelp(command string) {
	switch command {
	case "set":
		fmt.Println("lockkv set <key> [value]")
		fmt.Println()
		fmt.Println("Encrypts a value with a fresh key and stores it.")
		fmt.Println("The key goes to the OS keyring, the ciphertext to the general store.")
		fmt.Println("When no value is given it is read from stdin, without echo on a terminal.")
		fmt.Println()
		fmt.Println("Examples:")
		fmt.Println("  lockkv set session               # Prompt for the value")
		fmt.Println("  lockkv set session abc123        # Value on the command line")
		fmt.Println("  lockkv set cert < cert.pem       # Value from a file")
	case "get":
		fmt.Println("lockkv get <key>")
		fmt.Println()
		fmt.Println("Decrypts and prints the value stored under key.")
		fmt.Println("Exits with status 1 when there is no value.")
		fmt.Println()
		fmt.Println("Example:")
		fmt.Println("  lockkv get session")
	case "rm":
		fmt.Println("lockkv rm <key> [key...]")
		fmt.Println()
		fmt.Println("Removes values and their keys from both stores.")
		fmt.Println("Removing a key that does not exist succeeds.")
		fmt.Println()
		fmt.Println("Example:")
		fmt.Println("  lockkv rm session token")
	case "ls", "status":
		fmt.Println("lockkv ls [-q|--quiet]")
		fmt.Println()
		fmt.Println("Lists stored keys with their ciphertext size and last update.")
		fmt.Println("Does not read the keyring.")
		fmt.Println()
		fmt.Println("Flags:")
		fmt.Println("  -q, --quiet    Print keys only, one per line")
	case "inspect":
		fmt.Println("lockkv inspect <key> [key...]")
		fmt.Println()
		fmt.Println("Reports whether each key is absent, present, missing its key")
		fmt.Println("(ciphertext without a keyring entry) or an orphan key")
		fmt.Println("(keyring entry without ciphertext).")
		fmt.Println()
		fmt.Println("Example:")
		fmt.Println("  lockkv inspect session")
	case "compact":
		fmt.Println("lockkv compact")
		fmt.Println()
		fmt.Println("Compacts the bolt store to reclaim unused disk space.")
		fmt.Println("This is automatically done after 'rm',")
		fmt.Println("but can be run manually if needed.")
		fmt.Println()
		fmt.Println("Example:")
		fmt.Println("  lockkv compact")
	case "serve":
		fmt.Println("lockkv serve [--addr host:port]")
		fmt.Println()
		fmt.Println("Serves the store over HTTP until interrupted.")
		fmt.Println()
		fmt.Println("Endpoints:")
		fmt.Println("  GET    /v1/values/<key>    Read a value")
		fmt.Println("  PUT    /v1/values/<key>    Store {\"value\": \"...\"}")
		fmt.Println("  DELETE /v1/values/<key>    Remove a value")
		fmt.Println("  GET    /v1/states/<key>    Inspect a key")
		fmt.Println("  GET    /v1/keys            List keys")
		fmt.Println("  GET    /healthz            Liveness")
		fmt.Println("  GET    /metrics            Prometheus metrics")
		fmt.Println()
		fmt.Println("Flags:")
		fmt.Println("  --addr    Listen address (default 127.0.0.1:8420)")
	case "completion":
		fmt.Println("lockkv completion <bash|zsh|fish>")
		fmt.Println()
		fmt.Println("Outputs shell completion script for the specified shell.")
		fmt.Println()
		fmt.Println("Setup:")
		fmt.Println("  # Bash - add to ~/.bashrc")
		fmt.Println("  eval \"$(lockkv completion bash)\"")
		fmt.Println()
		fmt.Println("  # Zsh - add to ~/.zshrc")
		fmt.Println("  eval \"$(lockkv completion zsh)\"")
		fmt.Println()
		fmt.Println("  # Fish - add to ~/.config/fish/config.fish")
		fmt.Println("  lockkv completion fish | source")
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
	}
}
