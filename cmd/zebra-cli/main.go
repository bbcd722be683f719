// Command zebra-cli is the CLI client of §6: a cobra-based binary that
// dials the daemon's CLI gRPC surface and issues Exec/Show/Apply/Clear
// calls, honoring CLI_PRIVILEGE/CLI_SERVER_URL and the exit codes of §6.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/zebra-rs/zebra-go/cli"
)

const defaultServerURL = "127.0.0.1:2650"

func serverURL() string {
	if v := os.Getenv("CLI_SERVER_URL"); v != "" {
		return v
	}
	return defaultServerURL
}

func privilege() int {
	if v := os.Getenv("CLI_PRIVILEGE"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			return p
		}
	}
	return 1
}

func dial() (*cli.Client, *grpc.ClientConn, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	conn, err := grpc.DialContext(ctx, serverURL(),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithBlock())
	if err != nil {
		return nil, nil, err
	}
	return cli.NewClient(conn), conn, nil
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "zebra-cli [command line...]",
		Short: "Client for the zebra-go routing daemon's CLI surface",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExec(args)
		},
	}
	root.AddCommand(newShowCmd())
	root.AddCommand(newApplyCmd())
	root.AddCommand(newClearCmd())
	return root
}

func runExec(args []string) error {
	client, conn, err := dial()
	if err != nil {
		fmt.Fprintln(os.Stderr, "connect:", err)
		os.Exit(cli.ExitConnectFailed)
	}
	defer conn.Close()

	req := &cli.ExecRequest{
		Type:      cli.ExecTypeExec,
		Privilege: privilege(),
		Line:      joinArgs(args),
		Args:      args,
	}
	resp, err := client.Exec(context.Background(), req)
	if err != nil {
		fmt.Fprintln(os.Stderr, "exec:", err)
		os.Exit(cli.ExitUsageError)
	}
	for _, line := range resp.Lines {
		fmt.Println(line)
	}
	os.Exit(resp.Code)
	return nil
}

func newShowCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "show [path...]",
		Short: "Stream a show-command result from the daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, conn, err := dial()
			if err != nil {
				fmt.Fprintln(os.Stderr, "connect:", err)
				os.Exit(cli.ExitConnectFailed)
			}
			defer conn.Close()

			stream, err := client.Show(context.Background(), &cli.ShowRequest{
				JSON:  asJSON,
				Line:  joinArgs(args),
				Paths: args,
			})
			if err != nil {
				fmt.Fprintln(os.Stderr, "show:", err)
				os.Exit(cli.ExitUsageError)
			}
			for {
				chunk, err := stream.Recv()
				if err == io.EOF {
					break
				}
				if err != nil {
					fmt.Fprintln(os.Stderr, "show:", err)
					os.Exit(cli.ExitUsageError)
				}
				fmt.Print(chunk.Data)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "render output as JSON")
	return cmd
}

func newApplyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "apply <file>",
		Short: "Stream a configuration file to the daemon and commit it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				fmt.Fprintln(os.Stderr, "read:", err)
				os.Exit(cli.ExitInputIOError)
			}
			client, conn, err := dial()
			if err != nil {
				fmt.Fprintln(os.Stderr, "connect:", err)
				os.Exit(cli.ExitConnectFailed)
			}
			defer conn.Close()

			stream, err := client.Apply(context.Background())
			if err != nil {
				fmt.Fprintln(os.Stderr, "apply:", err)
				os.Exit(cli.ExitUsageError)
			}
			if err := stream.Send(&cli.ApplyLine{Line: string(data)}); err != nil {
				fmt.Fprintln(os.Stderr, "apply:", err)
				os.Exit(cli.ExitUsageError)
			}
			result, err := stream.CloseAndRecv()
			if err != nil {
				fmt.Fprintln(os.Stderr, "apply:", err)
				os.Exit(cli.ExitUsageError)
			}
			if !result.OK {
				fmt.Fprintln(os.Stderr, result.Message)
				os.Exit(cli.ExitUsageError)
			}
			fmt.Println(result.Message)
			return nil
		},
	}
}

func newClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear [path...]",
		Short: "Clear counters or transient state at path",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, conn, err := dial()
			if err != nil {
				fmt.Fprintln(os.Stderr, "connect:", err)
				os.Exit(cli.ExitConnectFailed)
			}
			defer conn.Close()

			result, err := client.Clear(context.Background(), &cli.ClearRequest{
				Line:  joinArgs(args),
				Paths: args,
			})
			if err != nil {
				fmt.Fprintln(os.Stderr, "clear:", err)
				os.Exit(cli.ExitUsageError)
			}
			fmt.Println(result.Message)
			return nil
		},
	}
}

func joinArgs(args []string) string {
	line := ""
	for i, a := range args {
		if i > 0 {
			line += " "
		}
		line += a
	}
	return line
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cli.ExitUsageError)
	}
}
