/*
 * @Description: 站点地图数据模型与 XML 结构
 * @Author: 安知鱼
 * @Date: 2025-09-21 00:00:00
 * @LastEditTime: 2025-10-08 22:47:02
 * @LastEditors: 安知鱼
 */
package sitemap

import (
	"encoding/xml"
	"time"

	"github.com/anzhiyu-c/anheyu-sitemap/pkg/domain/model"
)

// sitemaps.org 0.9 协议命名空间与 image 扩展命名空间
const (
	XmlnsSitemap = "http://www.sitemaps.org/schemas/sitemap/0.9"
	XmlnsImage   = "http://www.google.com/schemas/sitemap-image/1.1"
)

// lastmod 输出格式
const lastModLayout = "2006-01-02T15:04:05-07:00"

// URLSet 站点地图根元素
type URLSet struct {
	XMLName    xml.Name `xml:"urlset"`
	Xmlns      string   `xml:"xmlns,attr"`
	XmlnsImage string   `xml:"xmlns:image,attr,omitempty"`
	URLs       []URL    `xml:"url"`
}

// URL 站点地图URL条目，可选字段缺省时整体省略
type URL struct {
	Location     string     `xml:"loc"`
	LastModified string     `xml:"lastmod,omitempty"`
	ChangeFreq   string     `xml:"changefreq,omitempty"`
	Priority     float32    `xml:"priority,omitempty"`
	Images       []ImageXML `xml:"image:image,omitempty"`
}

// ImageXML 是 image 扩展下的一条 <image:image> 记录
type ImageXML struct {
	Location    string `xml:"image:loc"`
	Title       string `xml:"image:title,omitempty"`
	Caption     string `xml:"image:caption,omitempty"`
	GeoLocation string `xml:"image:geo_location,omitempty"`
	License     string `xml:"image:license,omitempty"`
}

// SitemapIndex 根索引文档
type SitemapIndex struct {
	XMLName  xml.Name       `xml:"sitemapindex"`
	Xmlns    string         `xml:"xmlns,attr"`
	Sitemaps []IndexSitemap `xml:"sitemap"`
}

// IndexSitemap 是根索引中的一条 <sitemap> 记录
type IndexSitemap struct {
	Location     string `xml:"loc"`
	LastModified string `xml:"lastmod,omitempty"`
}

// ChangeFrequency 更新频率枚举
type ChangeFrequency string

const (
	ChangeFreqAlways  ChangeFrequency = "always"
	ChangeFreqHourly  ChangeFrequency = "hourly"
	ChangeFreqDaily   ChangeFrequency = "daily"
	ChangeFreqWeekly  ChangeFrequency = "weekly"
	ChangeFreqMonthly ChangeFrequency = "monthly"
	ChangeFreqYearly  ChangeFrequency = "yearly"
	ChangeFreqNever   ChangeFrequency = "never"
)

// ImageEntry 是 URL 条目独占的一张图片。
type ImageEntry struct {
	Location    string
	Title       string
	Caption     string
	GeoLocation string
	License     string
}

// UrlEntry 站点地图条目
type UrlEntry struct {
	Location     string
	LastModified time.Time
	ChangeFreq   ChangeFrequency
	Priority     float32
	Images       []ImageEntry
}

// ToURL 转换为 XML 输出用的 URL 结构
func (e *UrlEntry) ToURL() URL {
	u := URL{
		Location:   e.Location,
		ChangeFreq: string(e.ChangeFreq),
		Priority:   e.Priority,
	}
	if !e.LastModified.IsZero() {
		u.LastModified = e.LastModified.Format(lastModLayout)
	}
	for _, img := range e.Images {
		u.Images = append(u.Images, ImageXML{
			Location:    img.Location,
			Title:       img.Title,
			Caption:     img.Caption,
			GeoLocation: img.GeoLocation,
			License:     img.License,
		})
	}
	return u
}

// imageEntriesFrom 将内容条目的图片元数据转换为 ImageEntry 序列，URL 为空的记录被丢弃。
func imageEntriesFrom(images []model.ContentImage) []ImageEntry {
	var entries []ImageEntry
	for _, img := range images {
		if img.URL == "" {
			continue
		}
		entries = append(entries, ImageEntry{
			Location:    img.URL,
			Title:       img.Title,
			Caption:     img.Caption,
			GeoLocation: img.GeoLocation,
			License:     img.License,
		})
	}
	return entries
}
