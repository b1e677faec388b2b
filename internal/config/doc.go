// Plane Project Manager - Team Templates and Project Sync for Plane.so
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/planemanager

/*
Package config loads and validates application configuration.

Configuration is layered with Koanf v2: built-in defaults, an optional YAML
file (CONFIG_PATH or config.yaml), then environment variables. Only mapped
environment variables are read.

Required settings:

  - PLANE_API_URL: Plane instance base URL (e.g. https://api.plane.so)
  - PLANE_API_KEY: workspace API key sent as X-API-Key
  - PLANE_WORKSPACE_SLUG: workspace slug used in every endpoint path

Common optional settings:

  - DATA_DIR: directory of the JSON snapshot files (default: data)
  - PERSISTENCE_MODE: local or remote (default: local)
  - PROGRESS_SYNC_INTERVAL: progress job period (default: 5m)
  - PROJECT_REFRESH_INTERVAL: project list refresh period (default: 30m)
  - HTTP_PORT: listen port (default: 3001)
  - LOG_LEVEL, LOG_FORMAT: logging (default: info, json)

Example config.yaml:

	plane:
	  url: https://api.plane.so
	  workspace_slug: acme
	persistence:
	  data_dir: /var/lib/planemanager
	sync:
	  progress_interval: 5m
*/
package config
