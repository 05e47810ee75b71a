package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sezi-yuan/nacos-naming-go/pkg/cache"
	"github.com/sezi-yuan/nacos-naming-go/pkg/log"
	"github.com/sezi-yuan/nacos-naming-go/pkg/model"
	"github.com/sezi-yuan/nacos-naming-go/pkg/naming"
)

var (
	Version = "dev"
	Commit  = "unknown"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "naming-demo",
	Short:   "Operational harness for the naming client",
	Version: Version,
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf("naming-demo version %s\nCommit: %s\n", Version, Commit))

	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("log-json", false, "Output logs in JSON format")
	rootCmd.PersistentFlags().StringSlice("server", []string{"http://127.0.0.1:8848/nacos"}, "Registry server base URL, repeatable")
	rootCmd.PersistentFlags().String("namespace", "public", "Registry namespace")
	rootCmd.PersistentFlags().String("group", "DEFAULT_GROUP", "Service group")
	rootCmd.PersistentFlags().String("cluster", "DEFAULT", "Service cluster")
	rootCmd.PersistentFlags().String("cache-dir", "./naming-cache", "Failover cache directory")
	rootCmd.PersistentFlags().String("username", "", "Registry username (omit to disable auth)")
	rootCmd.PersistentFlags().String("password", "", "Registry password (omit to disable auth)")

	cobra.OnInitialize(initLogging)

	rootCmd.AddCommand(registerCmd)
	rootCmd.AddCommand(deregisterCmd)
	rootCmd.AddCommand(selectCmd)
	rootCmd.AddCommand(subscribeCmd)
	rootCmd.AddCommand(dumpCacheCmd)

	selectCmd.Flags().Bool("healthy-only", false, "Only return healthy instances")
}

func initLogging() {
	level, _ := rootCmd.PersistentFlags().GetString("log-level")
	jsonOutput, _ := rootCmd.PersistentFlags().GetBool("log-json")
	log.Init(log.Config{Level: log.Level(level), JSONOutput: jsonOutput})
}

func newClient(cmd *cobra.Command) (*naming.NamingClient, error) {
	servers, _ := cmd.Flags().GetStringSlice("server")
	namespace, _ := cmd.Flags().GetString("namespace")
	group, _ := cmd.Flags().GetString("group")
	cluster, _ := cmd.Flags().GetString("cluster")
	cacheDir, _ := cmd.Flags().GetString("cache-dir")
	username, _ := cmd.Flags().GetString("username")
	password, _ := cmd.Flags().GetString("password")

	endpoints := make([]naming.ServerEndpoint, 0, len(servers))
	for _, s := range servers {
		endpoint, err := parseServerURL(s)
		if err != nil {
			return nil, fmt.Errorf("invalid --server %q: %w", s, err)
		}
		endpoints = append(endpoints, endpoint)
	}

	cfg := naming.Config{
		NamespaceID: namespace,
		Group:       group,
		Cluster:     cluster,
		ServerList:  endpoints,
		CacheDir:    cacheDir,
		Username:    username,
		Password:    password,
	}

	return naming.New(context.Background(), cfg)
}

// parseServerURL accepts "scheme://host:port/context_path" and splits it
// into a ServerEndpoint; the naming package only ever deals in already-
// parsed endpoints, so flag parsing is the one place this happens.
func parseServerURL(raw string) (naming.ServerEndpoint, error) {
	scheme, rest, ok := strings.Cut(raw, "://")
	if !ok {
		return naming.ServerEndpoint{}, fmt.Errorf("missing scheme")
	}
	hostPort, contextPath, _ := strings.Cut(rest, "/")
	host, portStr, ok := strings.Cut(hostPort, ":")
	if !ok {
		return naming.ServerEndpoint{}, fmt.Errorf("missing port")
	}
	var port int
	if _, err := fmt.Sscanf(portStr, "%d", &port); err != nil {
		return naming.ServerEndpoint{}, fmt.Errorf("invalid port %q: %w", portStr, err)
	}
	return naming.ServerEndpoint{Scheme: scheme, Host: host, Port: uint16(port), ContextPath: contextPath}, nil
}

var registerCmd = &cobra.Command{
	Use:   "register NAME IP PORT",
	Short: "Register an instance and keep it alive with heartbeats",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient(cmd)
		if err != nil {
			return err
		}

		name, ip := args[0], args[1]
		var port int
		if _, err := fmt.Sscanf(args[2], "%d", &port); err != nil {
			return fmt.Errorf("invalid port %q: %w", args[2], err)
		}

		instance, err := client.RegisterInstance(context.Background(), name, "", "", ip, uint16(port), 0, nil)
		if err != nil {
			return fmt.Errorf("failed to register instance: %w", err)
		}

		fmt.Printf("Registered %s at %s:%d\n", instance.ServiceName, instance.IP, instance.Port)
		fmt.Println("Beating... press Ctrl+C to stop and deregister.")

		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		<-sig

		if err := client.DeregisterInstance(context.Background(), instance); err != nil {
			return fmt.Errorf("failed to deregister instance: %w", err)
		}
		client.Shutdown()
		fmt.Println("Deregistered and shut down.")
		return nil
	},
}

var deregisterCmd = &cobra.Command{
	Use:   "deregister NAME IP PORT",
	Short: "Deregister an instance",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient(cmd)
		if err != nil {
			return err
		}
		defer client.Shutdown()

		name, ip := args[0], args[1]
		var port int
		if _, err := fmt.Sscanf(args[2], "%d", &port); err != nil {
			return fmt.Errorf("invalid port %q: %w", args[2], err)
		}

		group, _ := cmd.Flags().GetString("group")
		cluster, _ := cmd.Flags().GetString("cluster")
		instance := model.NewInstance(name, group, cluster, ip, uint16(port))

		if err := client.DeregisterInstance(context.Background(), instance); err != nil {
			return fmt.Errorf("failed to deregister instance: %w", err)
		}
		fmt.Printf("Deregistered %s at %s:%d\n", instance.ServiceName, ip, port)
		return nil
	},
}

var selectCmd = &cobra.Command{
	Use:   "select NAME",
	Short: "List enabled instances of a service (healthy ones only with --healthy-only)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient(cmd)
		if err != nil {
			return err
		}
		defer client.Shutdown()

		healthyOnly, _ := cmd.Flags().GetBool("healthy-only")
		instances, err := client.SelectInstances(context.Background(), args[0], "", nil, healthyOnly)
		if err != nil {
			return fmt.Errorf("failed to select instances: %w", err)
		}

		if len(instances) == 0 {
			fmt.Println("No instances found")
			return nil
		}
		for _, inst := range instances {
			fmt.Printf("%s:%d  healthy=%t  weight=%.2f\n", inst.IP, inst.Port, inst.Healthy, inst.Weight)
		}
		return nil
	},
}

var subscribeCmd = &cobra.Command{
	Use:   "subscribe NAME",
	Short: "Subscribe to a service and print changes until interrupted",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient(cmd)
		if err != nil {
			return err
		}
		defer client.Shutdown()

		sub, err := client.Subscribe(context.Background(), args[0], "", nil, cache.ServiceChangeListenerFunc(
			func(ctx context.Context, key string, hosts []model.Instance) {
				fmt.Printf("[%s] %d hosts\n", key, len(hosts))
				for _, h := range hosts {
					fmt.Printf("  %s:%d enabled=%t healthy=%t\n", h.IP, h.Port, h.Enabled, h.Healthy)
				}
			}))
		if err != nil {
			return fmt.Errorf("failed to subscribe: %w", err)
		}
		defer sub.Close()

		fmt.Println("Subscribed. Press Ctrl+C to stop.")
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		<-sig
		return nil
	},
}

var dumpCacheCmd = &cobra.Command{
	Use:   "dump-cache",
	Short: "Print the contents of the failover cache directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		cacheDir, _ := cmd.Flags().GetString("cache-dir")
		entries, err := os.ReadDir(cacheDir)
		if err != nil {
			return fmt.Errorf("failed to read cache dir: %w", err)
		}
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			content, err := os.ReadFile(cacheDir + "/" + entry.Name())
			if err != nil {
				fmt.Fprintf(os.Stderr, "skipping %s: %v\n", entry.Name(), err)
				continue
			}
			fmt.Printf("=== %s ===\n%s\n\n", entry.Name(), content)
		}
		return nil
	},
}
