// Package proxy implements the Atlas edge proxy: it classifies incoming
// map API requests, resolves the upstream target, injects the API key
// server-side, and rewrites style responses so clients never see the
// upstream credential or direct upstream URLs.
//
// The request pipeline:
//
//	classify -> resolve upstream -> inject credential -> forward -> rewrite
//
// Classification is driven entirely by query parameters so a single proxy
// endpoint can front the tiles, features, and LiDAR WMS upstreams.
package proxy
