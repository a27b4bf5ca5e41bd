package cmd

import (
	"context"

	"github.com/Laisky/blog-api/library/log"

	gcmd "github.com/Laisky/go-utils/v6/cmd"
	"github.com/Laisky/zap"
	"github.com/spf13/cobra"
)

var migrateCMD = &cobra.Command{
	Use:   "migrate",
	Short: "migrate",
	Long:  `create the indexes of the blog collections`,
	Args:  gcmd.NoExtraArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		settings, err := initialize(ctx, cmd)
		if err != nil {
			log.Logger.Panic("init", zap.Error(err))
		}

		db, blogDao, err := connectBlogDB(ctx, settings)
		if err != nil {
			log.Logger.Panic("connect db", zap.Error(err))
		}
		defer closeDB(ctx, db)

		if err := blogDao.EnsureIndexes(ctx); err != nil {
			log.Logger.Panic("migrate", zap.Error(err))
		}

		log.Logger.Info("indexes are ready")
	},
}

func init() {
	rootCMD.AddCommand(migrateCMD)
}
