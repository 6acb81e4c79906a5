// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func formatFlag(value, usage string) *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"f"},
		Usage:   usage,
		Value:   value,
	}
}

func anonymousFlag() *cli.BoolFlag {
	return &cli.BoolFlag{
		Name:  "anonymous",
		Usage: "Send the request without the bearer token",
	}
}

// postPayloadFlags are shared by posts create and posts update.
func postPayloadFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "title",
			Aliases: []string{"t"},
			Usage:   "Post title",
		},
		&cli.StringFlag{
			Name:    "content",
			Aliases: []string{"c"},
			Usage:   "Post content (HTML)",
		},
		&cli.StringFlag{
			Name:  "content-file",
			Usage: "Read content from a file",
		},
		&cli.BoolFlag{
			Name:  "markdown",
			Usage: "Convert the content from Markdown to HTML",
		},
		&cli.StringFlag{
			Name:  "excerpt",
			Usage: "Post excerpt",
		},
		&cli.StringFlag{
			Name:    "status",
			Aliases: []string{"s"},
			Usage:   "Post status (draft, publish, pending, private)",
		},
		&cli.StringFlag{
			Name:  "featured",
			Usage: "Image file to upload as the featured image",
		},
		&cli.StringSliceFlag{
			Name:    "gallery",
			Aliases: []string{"g"},
			Usage:   "Image file to upload into the gallery, as path or path=caption (repeatable)",
		},
	}
}

// setupCommand handles setup operations for database and authentication.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:  "database",
				Usage: "Initialize database and run migrations",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to configuration file",
						Value:   "config.toml",
					},
				},
				Action: r.SetupDatabase,
			},
			{
				Name:  "migrations",
				Usage: "Show applied and pending migrations",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "rollback",
						Usage: "Roll back the latest migration",
					},
				},
				Action: r.SetupMigrations,
			},
			{
				Name:  "token",
				Usage: "Sign in with a bearer token copied from browser DevTools",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "curl",
						Usage: "cURL command from browser DevTools (Copy as cURL)",
					},
					&cli.StringFlag{
						Name:  "curl-file",
						Usage: "Path to .sh file containing cURL command",
					},
				},
				Action: r.SetupToken,
			},
		},
	}
}

// authCommand handles authentication operations
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage the WordPress session",
		Commands: []*cli.Command{
			{
				Name:  "login",
				Usage: "Sign in with username and password (JWT)",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "username",
						Aliases: []string{"u"},
						Usage:   "WordPress username (defaults to the remembered one)",
					},
					&cli.StringFlag{
						Name:    "password",
						Aliases: []string{"p"},
						Usage:   "WordPress password",
						Sources: cli.EnvVars("WP_PASSWORD"),
					},
					&cli.BoolFlag{
						Name:  "remember",
						Usage: "Remember the username for the next login",
					},
				},
				Action: r.AuthLogin,
			},
			{
				Name:   "logout",
				Usage:  "Clear the stored session",
				Action: r.AuthLogout,
			},
			{
				Name:   "status",
				Usage:  "Show session state and token expiry",
				Action: r.AuthStatus,
			},
			{
				Name:  "whoami",
				Usage: "Fetch the signed-in user from the site",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.AuthWhoami,
			},
		},
	}
}

// postsCommand handles post operations
func postsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "posts",
		Aliases: []string{"post", "p"},
		Usage:   "List, show, create and edit posts",
		Commands: []*cli.Command{
			{
				Name:    "list",
				Aliases: []string{"ls"},
				Usage:   "List posts",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "page",
						Usage: "Page number",
						Value: 1,
					},
					&cli.IntFlag{
						Name:  "per-page",
						Usage: "Posts per page (defaults to editor.per_page)",
					},
					&cli.IntFlag{
						Name:  "category",
						Usage: "Only posts in this category ID",
					},
					&cli.StringFlag{
						Name:  "search",
						Usage: "Search term",
					},
					&cli.BoolFlag{
						Name:  "mine",
						Usage: "Only my posts, including drafts",
					},
					formatFlag("text", "Output format (json, csv, markdown, text)"),
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Write the export to a file (defaults to posts.{ext} when --save is set)",
					},
					&cli.BoolFlag{
						Name:  "save",
						Usage: "Save the export to a file",
					},
				},
				Action: r.PostsList,
			},
			{
				Name:  "show",
				Usage: "Show a post by ID or slug",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "post"},
				},
				Flags: []cli.Flag{
					formatFlag("text", "Output format (json, text)"),
					&cli.BoolFlag{
						Name:  "gallery",
						Usage: "Only print the gallery",
					},
				},
				Action: r.PostsShow,
			},
			{
				Name:   "create",
				Usage:  "Create a post",
				Flags:  postPayloadFlags(),
				Action: r.PostsCreate,
			},
			{
				Name:  "update",
				Usage: "Update a post; gallery uploads are appended to the post's gallery",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags: append(postPayloadFlags(),
					&cli.BoolFlag{
						Name:  "insert-gallery",
						Usage: "Insert the gallery at the end of the content",
					},
				),
				Action: r.PostsUpdate,
			},
			{
				Name:  "delete",
				Usage: "Delete a post",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "force",
						Usage: "Delete permanently instead of moving to trash",
					},
				},
				Action: r.PostsDelete,
			},
			{
				Name:  "preview",
				Usage: "Preview a post or a local content file in the browser",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "post"},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "file",
						Usage: "Preview a local HTML or Markdown file instead of a post",
					},
					&cli.BoolFlag{
						Name:  "no-browser",
						Usage: "Do not open the browser",
					},
				},
				Action: r.PostsPreview,
			},
		},
	}
}

// galleryCommand handles gallery markup operations
func galleryCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "gallery",
		Aliases: []string{"g"},
		Usage:   "Extract, render and upload image galleries",
		Commands: []*cli.Command{
			{
				Name:  "extract",
				Usage: "Extract the gallery from a post or an HTML file",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "post"},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "file",
						Usage: "Read content from a file instead of a post",
					},
					formatFlag("text", "Output format (json, yaml, html, text)"),
				},
				Action: r.GalleryExtract,
			},
			{
				Name:  "render",
				Usage: "Render gallery markup from image URLs, as url or url=caption",
				Flags: []cli.Flag{
					&cli.StringSliceFlag{
						Name:     "image",
						Aliases:  []string{"i"},
						Usage:    "Image URL, optionally url=caption (repeatable)",
						Required: true,
					},
				},
				Action: r.GalleryRender,
			},
			{
				Name:  "insert",
				Usage: "Insert gallery markup into a content file at a rune offset",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "file",
						Usage:    "Content file to edit in place",
						Required: true,
					},
					&cli.StringSliceFlag{
						Name:     "image",
						Aliases:  []string{"i"},
						Usage:    "Image URL, optionally url=caption (repeatable)",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "at",
						Usage: "Rune offset to insert at (defaults to the end)",
						Value: -1,
					},
				},
				Action: r.GalleryInsert,
			},
			{
				Name:      "upload",
				Usage:     "Upload images concurrently and print the gallery markup",
				ArgsUsage: "<file>[=caption] ...",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Concurrent uploads (defaults to uploads.workers)",
					},
					formatFlag("html", "Output format (json, yaml, html, text)"),
				},
				Action: r.GalleryUpload,
			},
		},
	}
}

// mediaCommand handles media library operations
func mediaCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "media",
		Usage: "Upload media and review upload history",
		Commands: []*cli.Command{
			{
				Name:  "upload",
				Usage: "Upload a single file to the media library",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "path"},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "title",
						Usage: "Media title (defaults to the file name)",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.MediaUpload,
			},
			{
				Name:  "history",
				Usage: "List uploads made from this machine",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of uploads to show",
						Value: 20,
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.MediaHistory,
			},
		},
	}
}

func categoriesCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "categories",
		Aliases: []string{"cats"},
		Usage:   "List categories",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
		},
		Action: r.Categories,
	}
}

func searchCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "search",
		Usage: "Search the site",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "term"},
		},
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
		},
		Action: r.Search,
	}
}

func dashboardCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "dashboard",
		Aliases: []string{"dash"},
		Usage:   "Show the signed-in user, recent posts and site counts",
		Action:  r.Dashboard,
	}
}

func profileCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "profile",
		Usage: "Show or update the signed-in user's profile",
		Commands: []*cli.Command{
			{
				Name:   "show",
				Usage:  "Show the stored profile",
				Action: r.ProfileShow,
			},
			{
				Name:  "update",
				Usage: "Update name, email or description",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "name", Usage: "Display name"},
					&cli.StringFlag{Name: "email", Usage: "Email address"},
					&cli.StringFlag{Name: "description", Usage: "Biographical info"},
				},
				Action: r.ProfileUpdate,
			},
		},
	}
}

// settingsCommand handles local client preferences
func settingsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "settings",
		Usage: "Local client preferences",
		Commands: []*cli.Command{
			{
				Name:   "show",
				Usage:  "Show settings",
				Action: r.SettingsShow,
			},
			{
				Name:  "set",
				Usage: "Change a setting",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "key"},
					&cli.StringArg{Name: "value"},
				},
				Action: r.SettingsSet,
			},
			{
				Name:  "export",
				Usage: "Export settings",
				Flags: []cli.Flag{
					formatFlag("json", "Output format (json, yaml)"),
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Write to a file instead of stdout",
					},
				},
				Action: r.SettingsExport,
			},
			{
				Name:   "reset",
				Usage:  "Restore default settings",
				Action: r.SettingsReset,
			},
		},
	}
}

// apiCommand handles raw REST API calls
func apiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "api",
		Usage: "Raw calls to the WordPress REST API",
		Commands: []*cli.Command{
			{
				Name:  "get",
				Usage: "GET a path relative to the REST root, prints raw JSON",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "path"},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
						Value: true,
					},
					anonymousFlag(),
				},
				Action: r.APIGet,
			},
			{
				Name:  "post",
				Usage: "POST with a JSON body",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "path"},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "data",
						Aliases:  []string{"d"},
						Usage:    "JSON body to send",
						Required: true,
					},
					anonymousFlag(),
				},
				Action: r.APIPost,
			},
			{
				Name:  "delete",
				Usage: "DELETE a path",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "path"},
				},
				Flags:  []cli.Flag{anonymousFlag()},
				Action: r.APIDelete,
			},
		},
	}
}

// tuiCommand returns the top-level TUI command for the interactive post editor.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch the interactive post editor",
		Action:  r.TUI,
	}
}
