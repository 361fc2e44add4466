package main

import (
	"fmt"

	"github.com/prometheus/common/version"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/tools/clientcmd"
	ctrl "sigs.k8s.io/controller-runtime"

	"github.com/jobmesh/jobctl/internal/launcher"
	"github.com/jobmesh/jobctl/internal/naming"
	"github.com/jobmesh/jobctl/internal/request"
	"github.com/jobmesh/jobctl/internal/resolve"
)

// newClientset builds the typed cluster client from the configured
// kubeconfig, falling back to the standard lookup chain.
func newClientset() (kubernetes.Interface, error) {
	kubeconfig := viper.GetString("kubeconfig")
	if kubeconfig == "" {
		kubeconfig = clientcmd.RecommendedHomeFile
	}
	cfg, err := clientcmd.BuildConfigFromFlags("", kubeconfig)
	if err != nil {
		return nil, fmt.Errorf("loading kubeconfig: %w", err)
	}
	return kubernetes.NewForConfig(cfg)
}

func newDeployCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "deploy -f MANIFEST [KEY=VALUE...]",
		Short: "Deploy a workload and optionally wait for it to finish",
		RunE: func(cmd *cobra.Command, args []string) error {
			manifest, _ := cmd.Flags().GetString("file")
			wait, _ := cmd.Flags().GetBool("wait")
			interval, _ := cmd.Flags().GetDuration("progress-interval")

			req, err := request.Load(manifest)
			if err != nil {
				return err
			}
			if err := req.ApplyOverrides(args); err != nil {
				return err
			}

			resolver := resolve.New(resolve.Config{
				Image:          viper.GetString("image"),
				ServiceAccount: viper.GetString("service-account"),
			})
			spec, err := resolver.Resolve(req)
			if err != nil {
				return err
			}

			client, err := newClientset()
			if err != nil {
				return err
			}

			ctx := ctrl.LoggerInto(cmd.Context(), ctrl.Log.WithName("deploy"))
			appID, err := launcher.New(client, viper.GetString("namespace"), naming.NewDefault()).
				Deploy(ctx, spec, launcher.Options{
					WaitForCompletion: wait,
					ProgressInterval:  interval,
				})
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), appID)
			return nil
		},
	}

	cmd.Flags().StringP("file", "f", "", "path to the deployment request manifest")
	cmd.Flags().String("image", "", "runner container image")
	cmd.Flags().String("service-account", "", "service account for the runner pod")
	cmd.Flags().Bool("wait", false, "block until the workload reaches a terminal state")
	cmd.Flags().Duration("progress-interval", launcher.DefaultProgressInterval,
		"progress logging cadence while waiting")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version and build information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.Print("jobctl"))
		},
	}
}
