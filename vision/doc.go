// Copyright 2026 PromptLens Authors. All rights reserved.
// Use of this source code is governed by the project license.

/*
包 vision 负责输入图片的解码、上传前压缩以及内容启发式分析。

# 分析

  - [DetectCopySpace] — 基于梯度能量找出低纹理的边带（留白区域）
  - [DetectCutoutOrCheckerboard] — 判断透明抠图与"假透明"棋盘格背景
  - [Analyze] — 组合以上两项，任何内部错误都降级为空信号

分析是纯函数：相同像素输入得到相同结果，结果不做缓存。

# 输入

  - [Decode] — 嗅探 MIME、解码 png/jpeg/gif/webp，并按 EXIF 方向纠正 JPEG
  - [PrepareUpload] — 按最大边长缩放，带透明度时保留 PNG，否则编码为 JPEG
  - [Source] — 从本地文件或 URL（默认 15 秒超时）读取图片字节
*/
package vision
