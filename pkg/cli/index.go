package cli

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/learnloop/lumen/pkg/cli/config"
	"github.com/learnloop/lumen/pkg/service/vectorindex"
	"github.com/learnloop/lumen/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

func printIndexInfo(label string, info *vectorindex.Info) {
	if !info.Exists {
		fmt.Printf("%s empty index\n", color.YellowString(label))
		return
	}
	fmt.Printf("%s size=%d dimension=%d generation=%s\n",
		color.GreenString(label), info.Size, info.Dimension, info.Generation)
}

func cmdIndex() *cli.Command {
	var indexCfg config.Index

	return &cli.Command{
		Name:  "index",
		Usage: "Inspect, back up and restore the vector index",
		Commands: []*cli.Command{
			{
				Name:  "check",
				Usage: "Load both artifacts and verify they agree",
				Flags: indexCfg.Flags(),
				Action: func(ctx context.Context, c *cli.Command) error {
					stored, err := vectorindex.Load(indexCfg.Dir())
					if err != nil {
						return goerr.Wrap(err, "index check failed", goerr.V("dir", indexCfg.Dir()))
					}
					printIndexInfo("OK", stored.Info())
					return nil
				},
			},
			cmdIndexBackup(),
			cmdIndexRestore(),
		},
	}
}

func cmdIndexBackup() *cli.Command {
	var indexCfg config.Index
	var storageCfg config.Storage

	return &cli.Command{
		Name:  "backup",
		Usage: "Upload the index artifact pair to Cloud Storage",
		Flags: append(indexCfg.Flags(), storageCfg.Flags()...),
		Action: func(ctx context.Context, c *cli.Command) error {
			stored, err := vectorindex.Load(indexCfg.Dir())
			if err != nil {
				return goerr.Wrap(err, "failed to load index", goerr.V("dir", indexCfg.Dir()))
			}

			svc, closer, err := storageCfg.Configure(ctx)
			if err != nil {
				return err
			}
			defer closer()

			manifest, err := svc.Backup(ctx, stored)
			if err != nil {
				return err
			}

			logging.Default().Info("Index backed up", "storage", &storageCfg, "generation", manifest.Generation)
			printIndexInfo("Backed up", stored.Info())
			return nil
		},
	}
}

func cmdIndexRestore() *cli.Command {
	var indexCfg config.Index
	var storageCfg config.Storage

	return &cli.Command{
		Name:  "restore",
		Usage: "Download the latest index artifact pair into an empty index directory",
		Flags: append(indexCfg.Flags(), storageCfg.Flags()...),
		Action: func(ctx context.Context, c *cli.Command) error {
			svc, closer, err := storageCfg.Configure(ctx)
			if err != nil {
				return err
			}
			defer closer()

			info, err := svc.Restore(ctx, indexCfg.Dir())
			if err != nil {
				return err
			}

			logging.Default().Info("Index restored", "storage", &storageCfg, "dir", indexCfg.Dir())
			printIndexInfo("Restored", info)
			return nil
		},
	}
}
